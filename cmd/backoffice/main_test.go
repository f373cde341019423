package main

import (
	"testing"

	"github.com/jzahidzamacona/Fronty-sub001/session"
	"github.com/jzahidzamacona/Fronty-sub001/token"
	"github.com/stretchr/testify/require"
)

func TestAllowedSections(t *testing.T) {
	tests := []struct {
		name string
		user *session.User
		want []string
	}{
		{"logged out", nil, []string{"Ventas"}},
		{"employee", &session.User{Roles: token.NewRoleSet("ROLE_EMPLEADO")}, []string{"Ventas", "Clientes"}},
		{"manager", &session.User{Roles: token.NewRoleSet("GERENTE")}, []string{"Ventas", "Clientes", "Reportes"}},
		{"admin", &session.User{Roles: token.NewRoleSet("ROLE_ADMIN")}, []string{"Ventas", "Clientes", "Reportes", "Usuarios"}},
		{"read-only admin", &session.User{Roles: token.NewRoleSet("ADMIN", "SOLO_LECTURA")}, []string{"Ventas", "Clientes", "Reportes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, allowedSections(tt.user))
		})
	}
}
