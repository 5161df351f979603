package gallery

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Artwork is a single dated record from the gallery. The engine never
// mutates artworks; they are owned by the gallery.
type Artwork struct {
	ID              string   `json:"id"`
	ImageURL        string   `json:"imageUrl"`
	UploadedAt      string   `json:"uploadedAt"` // RFC 3339
	DurationMinutes int      `json:"durationMinutes,omitempty"`
	Tags            []TagRef `json:"tags,omitempty"`
	Title           string   `json:"title,omitempty"`
	Description     string   `json:"description,omitempty"`
}

// UploadedTime parses the upload timestamp in the given location.
// The boolean is false when the timestamp is missing or unparsable.
func (a Artwork) UploadedTime(loc *time.Location) (time.Time, bool) {
	if a.UploadedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, a.UploadedAt)
	if err != nil {
		// Some galleries return bare dates for imported scans
		t, err = time.ParseInLocation("2006-01-02", a.UploadedAt, loc)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return t.In(loc), true
}

// TagRef is a tag reference that the gallery serializes either as a
// display string or as a numeric vocabulary id.
type TagRef struct {
	Name string
	ID   int
}

func (t *TagRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t.Name = s
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("tag must be a string or a numeric id: %w", err)
	}
	t.ID = id
	return nil
}

func (t TagRef) MarshalJSON() ([]byte, error) {
	if t.Name != "" {
		return json.Marshal(t.Name)
	}
	return json.Marshal(t.ID)
}

// Display resolves the tag to a display name using the vocabulary.
// Numeric ids missing from the vocabulary fall back to "#<id>".
func (t TagRef) Display(vocab map[int]string) string {
	if t.Name != "" {
		return t.Name
	}
	if name, ok := vocab[t.ID]; ok {
		return name
	}
	return "#" + strconv.Itoa(t.ID)
}

// Tag is one entry of the gallery tag vocabulary.
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Profile carries the gallery user preferences the engine consumes.
type Profile struct {
	DisplayName string `json:"displayName"`
}

type artworksResponse struct {
	Artworks []Artwork `json:"artworks"`
}

type tagsResponse struct {
	Tags []Tag `json:"tags"`
}
