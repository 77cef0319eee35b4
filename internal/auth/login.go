package auth

import (
	_ "embed"
	"html/template"
)

//go:embed login.html
var loginHTML string

var loginTemplate = template.Must(template.New("login").Parse(loginHTML))

type loginPage struct {
	OIDC bool
}
