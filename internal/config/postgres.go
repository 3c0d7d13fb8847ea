package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type Postgres struct {
	Host         string `json:"host"`
	Port         uint16 `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	PasswordFile string `json:"password_file"`
	DbName       string `json:"db_name"`
	SSLMode      string `json:"ssl_mode"`

	// url is taken from DATABASE_URL and wins over the fields above
	url string
}

func (p Postgres) password() (string, error) {
	if p.Password != "" || p.PasswordFile == "" {
		return p.Password, nil
	}
	data, err := os.ReadFile(p.PasswordFile)
	if err != nil {
		return "", fmt.Errorf("unable to read from password file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// URL returns a postgres:// connection URL, usable by both pgx and the
// migration driver.
func (p Postgres) URL() (string, error) {
	if p.url != "" {
		return p.url, nil
	}
	if p.Host == "" || p.User == "" || p.DbName == "" {
		return "", fmt.Errorf("no DATABASE_URL set and postgres host, user or db_name missing")
	}
	password, err := p.password()
	if err != nil {
		return "", err
	}
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.DbName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String(), nil
}
