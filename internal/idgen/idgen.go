// Package idgen mints the random identifiers that name issues.
//
// Ids look like "iss-x7Kq2mR9aB": a short prefix naming the entity kind
// followed by a nanoid tail. The tail alphabet is alphanumeric only so
// ids paste cleanly into URLs and shell commands.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// IssuePrefix starts every issue id.
const IssuePrefix = "iss-"

const (
	alphabet   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tailLength = 10
)

// Generate mints a fresh issue id.
func Generate() (string, error) {
	tail, err := nanoid.Generate(alphabet, tailLength)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return IssuePrefix + tail, nil
}
