// Package admincli implements the operator commands of the portfolio admin
// tool: provisioning the administrator account, resetting its password and
// seeding demo projects.
//
// Usage:
//
//	admin create-admin [-email addr] [-name name] [-generate] [config flags]
//	admin passwd [-email addr] [-generate] [config flags]
//	admin seed-demo [config flags]
//
// Config flags are the server's (-c, -d, -k, -l); the secret key is not
// needed. Passwords are read from the terminal without echo unless -generate
// is given, in which case a random one is printed once.
package admincli
