package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"channelscout/internal/models"
	"channelscout/shared/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const apiBatchSize = 50

type Client struct {
	service     *youtube.Service
	config      *config.YouTubeConfig
	oauthConfig *oauth2.Config
	token       *oauth2.Token
}

func NewClient(cfg *config.YouTubeConfig) (*Client, error) {
	ctx := context.Background()

	// Create OAuth2 config for the device authorization flow.
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/youtube.readonly"},
		Endpoint:     google.Endpoint,
	}

	// Get OAuth2 token
	token, err := getToken(oauthConfig, cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth token: %w", err)
	}

	// Create token source that auto-refreshes and saves token
	tokenSource := &tokenSaver{
		config:    oauthConfig,
		token:     token,
		tokenFile: cfg.TokenFile,
	}

	// Create authenticated HTTP client with auto-refresh
	httpClient := oauth2.NewClient(ctx, tokenSource)

	// Create YouTube service
	service, err := youtube.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{
		service:     service,
		config:      cfg,
		oauthConfig: oauthConfig,
		token:       token,
	}, nil
}

// GetSubscriptions returns the authenticated user's subscriptions as channel
// summaries, in the order YouTube lists them. Channel statistics come from a
// second, batched lookup; channels the lookup misses keep zero counts.
func (c *Client) GetSubscriptions(ctx context.Context, maxResults int64) ([]models.ChannelSummary, error) {
	type subscription struct {
		channelID   string
		title       string
		description string
	}

	var subscriptions []subscription
	pageToken := ""
	for {
		call := c.service.Subscriptions.List([]string{"snippet"}).
			Mine(true).
			MaxResults(apiBatchSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		response, err := call.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get subscriptions: %w", err)
		}

		for _, item := range response.Items {
			subscriptions = append(subscriptions, subscription{
				channelID:   item.Snippet.ResourceId.ChannelId,
				title:       item.Snippet.Title,
				description: item.Snippet.Description,
			})
		}

		pageToken = response.NextPageToken
		if pageToken == "" || int64(len(subscriptions)) >= maxResults {
			break
		}
	}

	if int64(len(subscriptions)) > maxResults {
		subscriptions = subscriptions[:maxResults]
	}
	if len(subscriptions) == 0 {
		log.Println("No subscriptions found")
		return []models.ChannelSummary{}, nil
	}

	// Batched statistics lookup for subscriber/video counts.
	var channelIDs []string
	for _, sub := range subscriptions {
		channelIDs = append(channelIDs, sub.channelID)
	}

	type channelStats struct {
		description     string
		subscriberCount int64
		videoCount      int64
	}
	statsByChannel := make(map[string]channelStats)

	for _, batch := range chunkIDs(channelIDs, apiBatchSize) {
		call := c.service.Channels.List([]string{"snippet", "statistics"}).
			Id(strings.Join(batch, ","))

		response, err := call.Context(ctx).Do()
		if err != nil {
			log.Printf("Failed to get channel statistics for batch: %v", err)
			continue
		}

		for _, channel := range response.Items {
			stats := channelStats{}
			if channel.Snippet != nil {
				stats.description = channel.Snippet.Description
			}
			if channel.Statistics != nil {
				stats.subscriberCount = int64(channel.Statistics.SubscriberCount)
				stats.videoCount = int64(channel.Statistics.VideoCount)
			}
			statsByChannel[channel.Id] = stats
		}
	}

	summaries := make([]models.ChannelSummary, 0, len(subscriptions))
	for _, sub := range subscriptions {
		summary := models.ChannelSummary{
			Title:       sub.title,
			Description: sub.description,
		}
		if stats, ok := statsByChannel[sub.channelID]; ok {
			if stats.description != "" {
				summary.Description = stats.description
			}
			summary.SubscriberCount = stats.subscriberCount
			summary.VideoCount = stats.videoCount
		}
		summaries = append(summaries, summary)
	}

	log.Printf("Retrieved %d subscriptions", len(summaries))
	return summaries, nil
}

// GetLikedVideos returns the authenticated user's liked videos, most recent
// first as YouTube orders them.
func (c *Client) GetLikedVideos(ctx context.Context, maxResults int64) ([]models.VideoSummary, error) {
	var videos []models.VideoSummary
	pageToken := ""
	for {
		call := c.service.Videos.List([]string{"snippet"}).
			MyRating("like").
			MaxResults(apiBatchSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		response, err := call.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get liked videos: %w", err)
		}

		for _, item := range response.Items {
			videos = append(videos, models.VideoSummary{
				Title:        item.Snippet.Title,
				ChannelTitle: item.Snippet.ChannelTitle,
			})
		}

		pageToken = response.NextPageToken
		if pageToken == "" || int64(len(videos)) >= maxResults {
			break
		}
	}

	if int64(len(videos)) > maxResults {
		videos = videos[:maxResults]
	}

	log.Printf("Retrieved %d liked videos", len(videos))
	return videos, nil
}

// chunkIDs splits ids into batches of at most size entries.
func chunkIDs(ids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}

// tokenSaver wraps an oauth2.TokenSource to automatically save refreshed tokens.
// It intercepts token refresh operations and persists the new token to disk,
// ensuring that refreshed tokens survive application restarts.
type tokenSaver struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenFile string
	mu        sync.Mutex // Protects concurrent token refresh operations
}

// Token implements oauth2.TokenSource interface.
// It returns the current token, refreshing it if necessary and saving any
// refreshed token to disk. This ensures token persistence across restarts.
func (ts *tokenSaver) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	// Create a token source that can refresh the token
	tokenSource := ts.config.TokenSource(context.Background(), ts.token)

	// Get the token (this will refresh if needed)
	newToken, err := tokenSource.Token()
	if err != nil {
		return nil, err
	}

	// If the token was refreshed, save it
	if newToken.AccessToken != ts.token.AccessToken {
		log.Println("Token refreshed, saving to file")
		ts.token = newToken
		if err := saveToken(ts.tokenFile, newToken); err != nil {
			log.Printf("Warning: Failed to save refreshed token: %v", err)
		}
	}

	return newToken, nil
}

// getToken retrieves an OAuth2 token from disk or initiates the OAuth flow if needed.
// It prioritizes loading existing tokens with refresh tokens, even if expired,
// as they can be automatically refreshed. Only initiates new OAuth flow if no
// valid refresh token exists.
func getToken(config *oauth2.Config, tokenFile string) (*oauth2.Token, error) {
	// Try to load token from file
	tok, err := tokenFromFile(tokenFile)
	if err == nil {
		// Even if token appears expired, keep it if it has a refresh token
		// The tokenSaver will handle refreshing it
		if tok.RefreshToken != "" {
			log.Printf("Loaded token from file (expires: %v)", tok.Expiry)
			return tok, nil
		}
		// If no refresh token but still valid, use it
		if tok.Valid() {
			return tok, nil
		}
	}

	// If token doesn't exist or has no refresh token, get new one
	log.Println("Getting new token from web...")
	tok, err = getTokenFromWeb(config)
	if err != nil {
		return nil, err
	}

	// Save token to file
	if err := saveToken(tokenFile, tok); err != nil {
		log.Printf("Warning: Failed to save token: %v", err)
	}
	return tok, nil
}

func getTokenFromWeb(config *oauth2.Config) (*oauth2.Token, error) {
	if tok, err := getTokenWithDeviceFlow(config); err == nil {
		return tok, nil
	} else {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			log.Printf("Device authorization response failed (%s): %s", retrieveErr.Response.Status, strings.TrimSpace(string(retrieveErr.Body)))
		} else {
			log.Printf("Device authorization flow failed: %v", err)
		}

		return nil, fmt.Errorf("device authorization failed: %w. Ensure your OAuth client is created as 'TVs and Limited Input devices' and that the YouTube Data API v3 is enabled.", err)
	}
}

func getTokenWithDeviceFlow(config *oauth2.Config) (*oauth2.Token, error) {
	ctx := context.Background()

	resp, err := config.DeviceAuth(ctx, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("unable to start device authorization: %w", err)
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 80))
	fmt.Printf("YOUTUBE DEVICE AUTHORIZATION REQUIRED\n")
	fmt.Printf("%s\n", strings.Repeat("=", 80))
	fmt.Printf("1. Visit %s in your browser (any device works).\n", resp.VerificationURI)
	fmt.Printf("2. Enter this code when prompted: %s\n\n", resp.UserCode)
	if completeURL := strings.TrimSpace(resp.VerificationURIComplete); completeURL != "" {
		fmt.Printf("   If Google accepts direct links for your account, you can instead open:\n\n")
		fmt.Printf("   %s\n\n", completeURL)
		fmt.Printf("   If you see an 'invalid_request' error, fall back to the code entry flow above.\n\n")
	}
	fmt.Printf("Waiting for authorization to complete... (Ctrl+C to cancel)\n")
	fmt.Printf("%s\n", strings.Repeat("-", 80))

	tok, err := config.DeviceAccessToken(ctx, resp, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("device authorization did not complete: %w", err)
	}

	fmt.Printf("\n✅ Authorization successful! Token saved.\n")
	fmt.Printf("%s\n\n", strings.Repeat("=", 80))

	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	// Ensure parent directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode oauth token: %w", err)
	}
	fmt.Printf("Token saved to: %s\n", path)
	return nil
}

// RefreshToken manually triggers a token refresh if needed.
// This is called proactively before scheduled runs to ensure the token stays
// fresh. The refreshed token is automatically saved to disk.
func (c *Client) RefreshToken() error {
	log.Println("Checking if token needs refresh...")

	// Create a token source that can refresh the token
	tokenSource := c.oauthConfig.TokenSource(context.Background(), c.token)

	// Get the token (this will refresh if needed)
	newToken, err := tokenSource.Token()
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	// If the token was refreshed, save it
	if newToken.AccessToken != c.token.AccessToken {
		log.Println("Token refreshed, saving to file")
		c.token = newToken
		if err := saveToken(c.config.TokenFile, newToken); err != nil {
			return fmt.Errorf("failed to save refreshed token: %w", err)
		}
	} else {
		log.Printf("Token still valid until %v", c.token.Expiry)
	}

	return nil
}
