package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegistration(t *testing.T) {
	valid := RegisterTenantInput{
		Name:          "Acme Property Group",
		Subdomain:     "acme",
		AdminEmail:    "admin@acme.test",
		AdminPassword: "s3cret-pass",
	}

	tests := []struct {
		name    string
		mutate  func(*RegisterTenantInput)
		wantErr bool
	}{
		{"valid", func(*RegisterTenantInput) {}, false},
		{"missing name", func(in *RegisterTenantInput) { in.Name = "  " }, true},
		{"empty subdomain", func(in *RegisterTenantInput) { in.Subdomain = "" }, true},
		{"uppercase subdomain", func(in *RegisterTenantInput) { in.Subdomain = "Acme" }, true},
		{"subdomain with dot", func(in *RegisterTenantInput) { in.Subdomain = "acme.app" }, true},
		{"hyphenated subdomain", func(in *RegisterTenantInput) { in.Subdomain = "acme-west" }, false},
		{"leading hyphen", func(in *RegisterTenantInput) { in.Subdomain = "-acme" }, true},
		{"missing email", func(in *RegisterTenantInput) { in.AdminEmail = "" }, true},
		{"short password", func(in *RegisterTenantInput) { in.AdminPassword = "short" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := validateRegistration(in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
