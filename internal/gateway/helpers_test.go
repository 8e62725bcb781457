// ABOUTME: Shared fixtures for gateway tests
// ABOUTME: Builds registration input for the account service

package gateway

import "github.com/2389/docket/internal/accounts"

func accountsInput(email, role string) accounts.RegisterInput {
	return accounts.RegisterInput{
		Name:       "User " + email,
		Email:      email,
		Password:   "secret123",
		Department: "legal",
		Role:       role,
	}
}
