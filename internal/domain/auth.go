package domain

import "fmt"

// Credentials are the basic auth pair sent with every API request.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// String never includes the password.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username: %q, Password: [redacted]}", c.Username)
}

func (c Credentials) GoString() string {
	return c.String()
}
