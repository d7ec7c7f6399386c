package tasteprofiler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"channelscout/agents/taste-profiler/youtube"
	"channelscout/internal/models"
	"channelscout/shared/ai"
	"channelscout/shared/config"
	"channelscout/shared/email"
	"channelscout/shared/llm"
	"channelscout/shared/scheduler"
	"channelscout/shared/storage"
)

const (
	maxIngestSubscriptions = 200
	maxIngestLikedVideos   = 100
)

// TasteMetrics summarizes one profiling run for monitoring.
type TasteMetrics struct {
	Subscriptions   int
	LikedVideos     int
	Categories      int
	Recommendations int
}

func (m TasteMetrics) GetSummary() string {
	return fmt.Sprintf("ingested %d subscriptions and %d liked videos, derived %d categories, produced %d recommendations",
		m.Subscriptions, m.LikedVideos, m.Categories, m.Recommendations)
}

// TasteAgent implements the scheduler.Agent interface. Each run ingests the
// user's YouTube activity, derives a fresh taste profile, generates a
// recommendation batch that supersedes the previous one, and emails a digest.
type TasteAgent struct {
	config        *config.Config
	youtubeClient *youtube.Client
	providers     *llm.Registry
	analyzer      *ai.Analyzer
	emailSender   *email.Sender
	store         *storage.ProfileStore
}

func NewTasteAgent(cfg *config.Config) *TasteAgent {
	return &TasteAgent{
		config:    cfg,
		providers: llm.NewRegistryFromConfig(&cfg.AI),
	}
}

func (t *TasteAgent) Name() string {
	return "Taste Profiler"
}

func (t *TasteAgent) Initialize() error {
	log.Printf("Initializing %s...", t.Name())

	if t.youtubeClient == nil {
		client, err := youtube.NewClient(&t.config.YouTube)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		t.youtubeClient = client
		log.Println("YouTube client initialized")
	}

	if t.analyzer == nil {
		provider, err := t.providers.Active()
		if err != nil {
			return fmt.Errorf("failed to select LLM provider: %w", err)
		}
		t.analyzer = ai.NewAnalyzer(provider)
		log.Println("Taste analyzer initialized")
	}

	if t.emailSender == nil {
		t.emailSender = email.NewSender(&t.config.Email)
		log.Println("Email sender initialized")
	}

	if t.store == nil {
		store, err := storage.NewProfileStore(t.config.Profile.DataDir)
		if err != nil {
			return fmt.Errorf("failed to create profile store: %w", err)
		}
		t.store = store
		log.Println("Profile store initialized")
	}

	return nil
}

func (t *TasteAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()
	userID := t.config.Profile.UserID

	if err := t.youtubeClient.RefreshToken(); err != nil {
		log.Printf("Warning: token refresh failed: %v", err)
	}

	log.Println("Fetching YouTube activity...")
	subscriptions, err := t.youtubeClient.GetSubscriptions(ctx, maxIngestSubscriptions)
	if err != nil {
		return fmt.Errorf("failed to get subscriptions: %w", err)
	}

	likedVideos, err := t.youtubeClient.GetLikedVideos(ctx, maxIngestLikedVideos)
	if err != nil {
		// Subscriptions alone still make a useful profile.
		log.Printf("Warning: failed to get liked videos: %v", err)
		if events != nil && events.OnPartialFailure != nil {
			events.OnPartialFailure(err, time.Since(startTime))
		}
		likedVideos = nil
	}

	metrics := TasteMetrics{
		Subscriptions: len(subscriptions),
		LikedVideos:   len(likedVideos),
	}

	if len(subscriptions) == 0 && len(likedVideos) == 0 {
		log.Println("No activity found, skipping analysis")
		if events != nil && events.OnSuccess != nil {
			events.OnSuccess(metrics, time.Since(startTime))
		}
		return nil
	}

	log.Println("Analyzing taste profile...")
	result, err := t.analyzer.AnalyzeTaste(ctx, ai.TasteAnalysisInput{
		Subscriptions: subscriptions,
		LikedVideos:   likedVideos,
	})
	if err != nil {
		return fmt.Errorf("taste analysis failed: %w", err)
	}
	metrics.Categories = len(result.Categories)

	if err := t.store.SaveProfile(userID, result); err != nil {
		return fmt.Errorf("failed to save taste profile: %w", err)
	}
	log.Printf("Taste profile saved: %d categories", len(result.Categories))

	exclusions := make([]string, 0, len(subscriptions))
	for _, sub := range subscriptions {
		exclusions = append(exclusions, sub.Title)
	}

	log.Println("Generating recommendations...")
	items, err := t.analyzer.GenerateRecommendations(ctx, ai.RecommendationsInput{
		Categories:            result.Categories,
		AnalysisSummary:       result.AnalysisSummary,
		ExistingSubscriptions: exclusions,
	})
	if err != nil {
		// A profile without recommendations is a degraded run, not a failed one.
		if errors.Is(err, ai.ErrNoValidRecommendations) {
			log.Printf("Warning: recommendation batch fully rejected: %v", err)
			if events != nil && events.OnPartialFailure != nil {
				events.OnPartialFailure(err, time.Since(startTime))
			}
			return nil
		}
		return fmt.Errorf("recommendation generation failed: %w", err)
	}
	metrics.Recommendations = len(items)

	if err := t.store.SaveRecommendations(userID, items); err != nil {
		return fmt.Errorf("failed to save recommendations: %w", err)
	}
	log.Printf("Recommendation batch saved: %d items", len(items))

	digest := &models.RecommendationDigest{
		Date:       time.Now(),
		Categories: result.Categories,
		Items:      items,
	}
	if err := t.emailSender.SendDigest(digest); err != nil {
		// Everything is persisted; a delivery failure should not fail the run.
		log.Printf("Warning: failed to send digest email: %v", err)
		if events != nil && events.OnPartialFailure != nil {
			events.OnPartialFailure(err, time.Since(startTime))
		}
	} else {
		log.Println("Digest email sent")
	}

	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(startTime))
	}

	log.Printf("Session complete: %s", metrics.GetSummary())
	return nil
}
