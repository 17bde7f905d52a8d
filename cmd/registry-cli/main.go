package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/LTPPPP/did-trust-registry/types"
)

// registry-cli is offline tooling: it never talks to a running registryd.
// It mints Did/key material and X-DID-Proof headers for operators to paste
// into requests by hand, the way the teacher's cmd/ddi-tool generates and
// verifies DID proofs against its own blockchain client.
func main() {
	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	generateOut := generateCmd.String("out", "", "file to write the private key to (default: <did>.key)")
	generateQR := generateCmd.Bool("qr", false, "also print the DID as a QR code")

	proofCmd := flag.NewFlagSet("proof", flag.ExitOnError)
	proofDID := proofCmd.String("did", "", "DID to generate a proof for (hex)")
	proofKeyFile := proofCmd.String("key", "", "path to the private key file from 'generate'")

	verifyCmd := flag.NewFlagSet("verify", flag.ExitOnError)
	verifyDID := verifyCmd.String("did", "", "DID the proof claims to be (hex)")
	verifyPub := verifyCmd.String("pub", "", "the DID's Ed25519 public key (hex)")
	verifyTimestamp := verifyCmd.String("timestamp", "", "the X-DID-Timestamp value used when the proof was generated (RFC3339)")
	verifyProof := verifyCmd.String("proof", "", "the X-DID-Proof value to check (hex)")

	if len(os.Args) < 2 {
		fmt.Println("Expected 'generate', 'proof', or 'verify' subcommands")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		generateCmd.Parse(os.Args[2:])
		generateKeypair(*generateOut, *generateQR)

	case "proof":
		proofCmd.Parse(os.Args[2:])
		if *proofDID == "" || *proofKeyFile == "" {
			fmt.Println("DID and key file are required")
			proofCmd.PrintDefaults()
			os.Exit(1)
		}
		generateProof(*proofDID, *proofKeyFile)

	case "verify":
		verifyCmd.Parse(os.Args[2:])
		if *verifyDID == "" || *verifyPub == "" || *verifyTimestamp == "" || *verifyProof == "" {
			fmt.Println("did, pub, timestamp, and proof are all required")
			verifyCmd.PrintDefaults()
			os.Exit(1)
		}
		verifyDIDProof(*verifyDID, *verifyPub, *verifyTimestamp, *verifyProof)

	default:
		fmt.Println("Expected 'generate', 'proof', or 'verify' subcommands")
		os.Exit(1)
	}
}

// generateKeypair mints a fresh Ed25519 keypair and a random 32-byte Did to
// go with it. The Did is not derived from the key (spec.md §3.1: Dids are
// opaque identifiers chosen independently of any key material), so this
// only proposes one; the caller still registers it via POST /v1/did/onchain
// or /v1/did/offchain.
func generateKeypair(out string, withQR bool) {
	var did types.Did
	if _, err := rand.Read(did[:]); err != nil {
		fmt.Println("Error generating DID:", err)
		os.Exit(1)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		fmt.Println("Error generating key pair:", err)
		os.Exit(1)
	}

	filename := out
	if filename == "" {
		filename = did.String() + ".key"
	}
	if err := os.WriteFile(filename, []byte(hex.EncodeToString(priv)), 0600); err != nil {
		fmt.Println("Error saving private key:", err)
		os.Exit(1)
	}

	fmt.Println("Generated a new DID and Ed25519 keypair:")
	fmt.Println("DID:        ", did.String())
	fmt.Println("Public key: ", hex.EncodeToString(pub))
	fmt.Println("Private key saved to:", filename)
	fmt.Println("IMPORTANT: keep the private key file secure and never share it.")

	if withQR {
		qr, err := qrcode.New(did.String(), qrcode.Medium)
		if err != nil {
			fmt.Println("Error rendering QR code:", err)
			return
		}
		fmt.Println()
		fmt.Println(qr.ToSmallString(false))
	}
}

// generateProof signs the same "<did>:<timestamp>" message
// middleware.DDIAuthMiddleware expects, so the output can be pasted
// straight into X-DID / X-DID-Proof / X-DID-Timestamp headers.
func generateProof(did, keyFile string) {
	hexKey, err := os.ReadFile(keyFile)
	if err != nil {
		fmt.Println("Error reading private key:", err)
		os.Exit(1)
	}
	priv, err := hex.DecodeString(strings.TrimSpace(string(hexKey)))
	if err != nil || len(priv) != ed25519.PrivateKeySize {
		fmt.Println("Error: key file does not contain a valid hex-encoded Ed25519 private key")
		os.Exit(1)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	message := []byte(did + ":" + timestamp)
	sig := ed25519.Sign(ed25519.PrivateKey(priv), message)

	fmt.Println("DID Proof successfully generated for", did)
	fmt.Println("\nTo use this proof for API authentication, include the following HTTP headers:")
	fmt.Println("X-DID:          ", did)
	fmt.Println("X-DID-Proof:    ", hex.EncodeToString(sig))
	fmt.Println("X-DID-Timestamp:", timestamp)
	fmt.Println("\nNOTE: this proof is only valid for 15 minutes from the timestamp above.")

	jsonOutput := map[string]string{
		"did":       did,
		"proof":     hex.EncodeToString(sig),
		"timestamp": timestamp,
	}
	jsonBytes, _ := json.MarshalIndent(jsonOutput, "", "  ")
	fmt.Println("\nJSON Format:")
	fmt.Println(string(jsonBytes))
}

// verifyDIDProof checks a proof offline against a known public key, without
// needing a Key registered in a running registryd (registry.Key looks up
// key 1 for the DID; this command instead lets the operator supply any
// public key to check, e.g. before submitting it for registration).
func verifyDIDProof(did, pubHex, timestamp, proofHex string) {
	pub, err := hex.DecodeString(pubHex)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		fmt.Println("Error: pub is not a valid hex-encoded Ed25519 public key")
		os.Exit(1)
	}
	sig, err := hex.DecodeString(strings.TrimPrefix(proofHex, "0x"))
	if err != nil {
		fmt.Println("Error: proof is not valid hex")
		os.Exit(1)
	}

	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		fmt.Println("Error: timestamp is not RFC3339")
		os.Exit(1)
	}
	now := time.Now().UTC()
	if ts.Before(now.Add(-15*time.Minute)) || ts.After(now.Add(15*time.Minute)) {
		fmt.Println("✗ Timestamp is outside the ±15 minute acceptance window")
		os.Exit(1)
	}

	message := []byte(did + ":" + timestamp)
	if ed25519.Verify(ed25519.PublicKey(pub), message, sig) {
		fmt.Println("✓ Proof is valid for DID", did)
	} else {
		fmt.Println("✗ Proof is invalid")
		os.Exit(1)
	}
}
