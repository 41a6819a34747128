// Command authorize runs the one-time YouTube OAuth consent flow and stores
// the resulting token where the uploader expects it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"

	"clip-publisher/internal"
	"clip-publisher/internal/store"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := internal.LoadConfig()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}

	credentialsPath := flag.String("credentials", cfg.YouTubeCredentialsPath, "path to client_secrets.json")
	tokenPath := flag.String("token", cfg.YouTubeTokenPath, "path to save the token")
	flag.Parse()

	if _, err := os.Stat(*credentialsPath); os.IsNotExist(err) {
		fmt.Printf("credentials file not found: %s\n", *credentialsPath)
		fmt.Println("create OAuth 2.0 credentials (Desktop app) in Google Cloud Console and download the JSON")
		os.Exit(1)
	}

	b, err := os.ReadFile(*credentialsPath)
	if err != nil {
		fmt.Printf("read credentials: %v\n", err)
		os.Exit(1)
	}

	oauthCfg, err := google.ConfigFromJSON(b, youtube.YoutubeUploadScope)
	if err != nil {
		fmt.Printf("parse credentials: %v\n", err)
		os.Exit(1)
	}

	authURL := oauthCfg.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Println("open this URL in your browser:")
	fmt.Printf("  %s\n\n", authURL)
	fmt.Print("paste the authorization code: ")

	var authCode string
	if _, err := fmt.Scanln(&authCode); err != nil {
		fmt.Printf("read auth code: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	token, err := oauthCfg.Exchange(ctx, authCode)
	if err != nil {
		fmt.Printf("exchange code: %v\n", err)
		os.Exit(1)
	}

	tokenJSON, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		fmt.Printf("encode token: %v\n", err)
		os.Exit(1)
	}

	var tokens store.Store = store.NewFileStore(*tokenPath)
	if cfg.UseS3Stores() {
		tokens, err = store.NewS3Store(ctx, store.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		}, *tokenPath)
		if err != nil {
			fmt.Printf("s3 store: %v\n", err)
			os.Exit(1)
		}
	}
	if err := tokens.Save(ctx, tokenJSON); err != nil {
		fmt.Printf("save token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("token saved to %s\n", *tokenPath)
}
