package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/fleet-tracking/geo"
)

// VehiclePosition is one decoded feed entry.
type VehiclePosition struct {
	VehicleID  string
	Position   geo.Position
	RecordedAt time.Time
}

// Source supplies vehicle positions from somewhere external.
type Source interface {
	Fetch(ctx context.Context) ([]VehiclePosition, error)
}

// GTFSRTSource reads a GTFS-RT VehiclePositions feed from an HTTP URL or a
// local protobuf file.
type GTFSRTSource struct {
	urlOrPath  string
	httpClient *http.Client
}

// NewGTFSRTSource builds a source for urlOrPath with the given fetch timeout.
func NewGTFSRTSource(urlOrPath string, timeout time.Duration) *GTFSRTSource {
	return &GTFSRTSource{
		urlOrPath:  urlOrPath,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and decodes the feed. Entries without a vehicle id or a
// position are skipped; an entry without its own timestamp falls back to the
// feed header timestamp.
func (s *GTFSRTSource) Fetch(ctx context.Context) ([]VehiclePosition, error) {
	raw, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	var msg gtfs.FeedMessage
	if err := proto.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("decode gtfsrt feed: %w", err)
	}
	headerTS := time.Now()
	if h := msg.GetHeader(); h != nil && h.GetTimestamp() > 0 {
		headerTS = time.Unix(int64(h.GetTimestamp()), 0)
	}
	out := make([]VehiclePosition, 0, len(msg.Entity))
	for _, ent := range msg.Entity {
		vp := ent.GetVehicle()
		if vp == nil || vp.GetVehicle() == nil || vp.GetPosition() == nil {
			continue
		}
		id := vp.GetVehicle().GetId()
		if id == "" {
			continue
		}
		recordedAt := headerTS
		if ts := vp.GetTimestamp(); ts > 0 {
			recordedAt = time.Unix(int64(ts), 0)
		}
		out = append(out, VehiclePosition{
			VehicleID: id,
			Position: geo.Position{
				Latitude:  float64(vp.GetPosition().GetLatitude()),
				Longitude: float64(vp.GetPosition().GetLongitude()),
			},
			RecordedAt: recordedAt,
		})
	}
	return out, nil
}

func (s *GTFSRTSource) read(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(s.urlOrPath, "http://") && !strings.HasPrefix(s.urlOrPath, "https://") {
		return os.ReadFile(s.urlOrPath)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.urlOrPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.urlOrPath, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, s.urlOrPath)
	}
	return io.ReadAll(resp.Body)
}
