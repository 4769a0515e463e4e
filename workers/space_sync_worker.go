// workers/space_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"space-games-system/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredSpace matches the JSON response from the pairing service.
type MirroredSpace struct {
	ID        string                `json:"id"`
	Members   []MirroredSpaceMember `json:"members"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type MirroredSpaceMember struct {
	UserID   string    `json:"user_id"`
	PairedAt time.Time `json:"paired_at"`
}

// GetSpaceChangesResponse is the top-level structure of the pairing service response.
type GetSpaceChangesResponse struct {
	Spaces []MirroredSpace `json:"spaces"`
}

// SpaceSyncWorker mirrors pairings from the external pairing service into the
// local space_members table. Joining and unpairing happen over there; this
// service only needs a fresh read model to answer "are these two paired?".
type SpaceSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8400"
	endpointPath string // e.g., "/api/v1/public/spaces"
	serviceToken string
	httpClient   *http.Client
}

func NewSpaceSyncWorker(db *gorm.DB, pairingServiceBaseURL, endpointPath, serviceToken string) *SpaceSyncWorker {
	return &SpaceSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      pairingServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *SpaceSyncWorker) Start(ctx context.Context) {
	logrus.Info("🔁 Starting Space Sync Worker (pairing-service → space_members)…")
	go w.run(ctx)
}

func (w *SpaceSyncWorker) run(ctx context.Context) {
	// Initial sync backfills from the beginning of time.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		logrus.Warnf("⚠️ Initial space sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				logrus.Errorf("❌ Space sync batch failed: %v", err)
			}
		case <-ctx.Done():
			logrus.Info("⏹️ Space Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt from the local mirror.
func (w *SpaceSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM space_members").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches pairing changes and upserts the local space_members rows.
func (w *SpaceSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid pairing service URL '%s': %w", w.baseURL, err)
	}

	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to pairing service failed: %w", err)
	}
	defer func() {
		// Always drain & close to prevent connection leaks
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("pairing service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetSpaceChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode pairing service response: %w", err)
	}

	if len(response.Spaces) == 0 {
		logrus.Debugf("[SYNC] No pairing changes since %s", sinceStr)
		return nil
	}

	var upsertCount, errorCount int
	for _, space := range response.Spaces {
		for _, member := range space.Members {
			row := models.SpaceMember{
				SpaceID:  space.ID,
				UserID:   member.UserID,
				PairedAt: member.PairedAt,
			}
			if err := w.db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "space_id"}, {Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"paired_at", "updated_at"}),
			}).Create(&row).Error; err != nil {
				errorCount++
				logrus.Warnf("[SYNC] ⚠️ Failed to upsert space_member (space=%q, user=%q): %v",
					space.ID, member.UserID, err)
			} else {
				upsertCount++
			}
		}
	}

	logrus.Infof("[SYNC] ✅ Synced %d space(s) (%d member rows upserted, %d errors)",
		len(response.Spaces), upsertCount, errorCount)
	return nil
}
