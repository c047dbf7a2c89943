// Command keygen prints a fresh base64-encoded 256-bit token key for the
// TOKEN_SECRET_KEY environment variable.
package main

import (
	"fmt"
	"log"

	"github.com/portkeeper/portkeeper/internal/token"
)

func main() {
	key, err := token.GenerateKey()
	if err != nil {
		log.Fatalf("keygen: %v", err)
	}
	fmt.Println(key)
}
