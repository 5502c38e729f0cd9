package configuration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRLS(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		dbUser  string
		want    string
		wantErr bool
	}{
		{name: "empty defaults to disabled", mode: "", dbUser: "atrium", want: "disabled"},
		{name: "disabled", mode: "disabled", dbUser: "atrium", want: "disabled"},
		{name: "enforce", mode: "enforce", dbUser: "atrium", want: "enforce"},
		{name: "case insensitive", mode: "ENFORCE", dbUser: "atrium", want: "enforce"},
		{name: "unknown mode", mode: "maybe", dbUser: "atrium", wantErr: true},
		{name: "enforce rejects superuser", mode: "enforce", dbUser: "postgres", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Configuration{RLSEnforce: tt.mode}
			c.Database.User = tt.dbUser
			err := c.validateRLS()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, c.RLSEnforce)
		})
	}
}

func TestDatabaseOptionsConnectionString(t *testing.T) {
	d := DatabaseOptions{
		Name:     "atriumpm",
		Host:     "db.internal",
		Port:     "5433",
		User:     "atrium",
		Password: "secret",
	}
	require.Equal(t,
		"host=db.internal port=5433 user=atrium dbname=atriumpm password=secret sslmode=disable",
		d.ConnectionString(),
	)
}
