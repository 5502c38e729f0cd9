package tenantdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultDSN = "host=localhost port=5432 user=atrium dbname=atriumpm password=secret sslmode=disable"

func TestApplyTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
		wantErr  bool
	}{
		{
			name:     "db placeholder substitution",
			template: "host=shard-7.internal user=atrium dbname={db} sslmode=require",
			want:     "host=shard-7.internal user=atrium dbname=atriumpm sslmode=require",
		},
		{
			name:     "placeholder is case insensitive",
			template: "host=shard-7.internal dbname={DB}",
			want:     "host=shard-7.internal dbname=atriumpm",
		},
		{
			name:     "template without dbname inherits default",
			template: "host=shard-7.internal user=atrium",
			want:     "host=shard-7.internal user=atrium dbname=atriumpm",
		},
		{
			name:     "template with explicit dbname kept as-is",
			template: "host=shard-7.internal dbname=tenant_acme",
			want:     "host=shard-7.internal dbname=tenant_acme",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := applyTemplate(tt.template, defaultDSN)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyTemplate_DefaultWithoutDBName(t *testing.T) {
	_, err := applyTemplate("host=shard-7.internal dbname={db}", "host=localhost user=atrium")
	require.ErrorIs(t, err, errNoDatabaseName)
}

func TestDSNValue(t *testing.T) {
	assert.Equal(t, "atriumpm", dsnValue(defaultDSN, "dbname"))
	assert.Equal(t, "atriumpm", dsnValue(defaultDSN, "DBNAME"))
	assert.Equal(t, "", dsnValue(defaultDSN, "application_name"))
}
