package main

import "github.com/couchcryptid/swe-alert-service/internal/cli"

func main() {
	cli.Execute()
}
