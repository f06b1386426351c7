// Package main implements the ucancli CLI: key generation, DID
// inspection, and UCAN token decoding and local verification.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/zeroutils-go/zeroucan/pkg/keys"
	"github.com/zeroutils-go/zeroucan/pkg/ucan"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "help", "--help", "-h":
		printUsage()
	case "keygen":
		err = keygenCommand(os.Args[2:])
	case "did":
		err = didCommand(os.Args[2:])
	case "ucan":
		err = ucanCommand(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ucancli - DID and UCAN token utility

Usage:
  ucancli keygen [ed25519|p256|secp256k1]     Generate a keypair and print its did:wk identifier
  ucancli did parse <did>                     Parse and describe a did:wk identifier
  ucancli ucan decode <token>                 Decode a UCAN token's header and payload
  ucancli ucan verify <token>                 Verify a UCAN token's local validity
  ucancli help                                Show this message`)
}

func keygenCommand(args []string) error {
	kt := keys.Ed25519
	if len(args) > 0 {
		kt = keys.KeyType(args[0])
	}

	var priv keys.PrivateKey
	var err error
	switch kt {
	case keys.Ed25519:
		priv, err = keys.GenerateEd25519()
	case keys.P256:
		priv, err = keys.GenerateP256()
	case keys.Secp256k1:
		priv, err = keys.GenerateSecp256k1()
	default:
		return fmt.Errorf("unsupported key type %q", kt)
	}
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	did := keys.NewDID(priv.Public(), nil)
	fmt.Println(did.String())
	return nil
}

func didCommand(args []string) error {
	if len(args) < 2 || args[0] != "parse" {
		return fmt.Errorf("usage: ucancli did parse <did>")
	}
	did, err := keys.ParseDID(args[1])
	if err != nil {
		return fmt.Errorf("parse DID: %w", err)
	}

	out := map[string]any{
		"keyType": string(did.PublicKey.Type()),
	}
	if did.Locator != nil {
		out["locator"] = did.Locator.String()
	}
	return printJSON(out)
}

func ucanCommand(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: ucancli ucan <decode|verify> <token>")
	}

	switch args[0] {
	case "decode":
		u, err := ucan.Decode(args[1])
		if err != nil {
			return fmt.Errorf("decode token: %w", err)
		}
		return printJSON(map[string]any{
			"header":  u.Header,
			"payload": u.Payload,
		})
	case "verify":
		u, err := ucan.Decode(args[1])
		if err != nil {
			return fmt.Errorf("decode token: %w", err)
		}
		now := uint64(0)
		if len(args) > 2 {
			n, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid now timestamp: %w", err)
			}
			now = n
		}
		if err := u.Validate(now); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Println("token is locally valid")
		return nil
	default:
		return fmt.Errorf("usage: ucancli ucan <decode|verify> <token>")
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
