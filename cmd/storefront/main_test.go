package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"kinderstep-backend/internal/client/gateway"
	"kinderstep-backend/internal/client/reconcile"
	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/schema"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"gateway message", &gateway.Error{Kind: gateway.KindValidation, Status: 409, Message: "Insufficient stock"}, "Insufficient stock"},
		{"expired session", &gateway.Error{Kind: gateway.KindUnauthorized, Status: 401, Message: "Invalid token"}, "Invalid token (run: storefront login)"},
		{"forbidden", &gateway.Error{Kind: gateway.KindUnauthorized, Status: 403, Message: "Admin access required"}, "Admin access required"},
		{"form", &schema.ValidationError{Fields: []schema.FieldError{{Field: "email", Rule: "email"}}}, "email is not a valid email"},
		{"guest", fmt.Errorf("list orders: %w", domain.ErrUnauthorized), "please sign in first (run: storefront login)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.err))
		})
	}

	merge := describe(&reconcile.Error{Cart: errors.New("boom")})
	assert.True(t, strings.HasPrefix(merge, "could not move your device cart/favorites"))
}

func TestConfirm(t *testing.T) {
	ask := func(input string) bool {
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader(input))
		cmd.SetOut(&bytes.Buffer{})
		return confirm(cmd, "Delete?")
	}

	assert.True(t, ask("y\n"))
	assert.True(t, ask("YES\n"))
	assert.False(t, ask("\n"))
	assert.False(t, ask("nope\n"))
	assert.False(t, ask(""))

	assumeYes = true
	defer func() { assumeYes = false }()
	assert.True(t, ask(""))
}
