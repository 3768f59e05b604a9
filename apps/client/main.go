package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strings"

	"golang.org/x/term"
)

func main() {
	baseURL := flag.String("url", envOr("LMS_API_URL", "http://localhost:5001"), "Base URL of the LMS API.")
	tokenPath := flag.String("token-file", envOr("LMS_TOKEN_FILE", ".auth"), "File holding the bearer token of the last login.")
	flag.Parse()

	in := bufio.NewReader(os.Stdin)
	c := &cli{
		api: newAPIClient(*baseURL, *tokenPath),
		in:  in,
		out: os.Stdout,
		readPassword: func() (string, error) {
			fd := int(os.Stdin.Fd())
			if !term.IsTerminal(fd) {
				line, err := in.ReadString('\n')
				if err != nil && line == "" {
					return "", err
				}
				return strings.TrimRight(line, "\r\n"), nil
			}
			pwd, err := term.ReadPassword(fd)
			return string(pwd), err
		},
	}
	if err := c.run(); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
