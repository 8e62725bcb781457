// Package accounts implements login, registration, token validation and
// first-admin bootstrap on top of the store and the auth token machinery.
package accounts
