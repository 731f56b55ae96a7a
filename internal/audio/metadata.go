package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrNoTag        = errors.New("file has no metadata tag")
)

// Metadata is the subset of tag fields the tools print.
type Metadata struct {
	Title      string
	Artist     string
	Album      string
	Genre      string
	Track      int
	TrackTotal int
	Year       int
	Format     string
	FileType   string
}

// ReadMetadata reads the ID3 (or other supported) tag of path.
func ReadMetadata(path string) (*Metadata, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoTag, path)
		}
		return nil, fmt.Errorf("failed to read tags of %s: %w", path, err)
	}

	track, total := m.Track()
	return &Metadata{
		Title:      m.Title(),
		Artist:     m.Artist(),
		Album:      m.Album(),
		Genre:      m.Genre(),
		Track:      track,
		TrackTotal: total,
		Year:       m.Year(),
		Format:     string(m.Format()),
		FileType:   string(m.FileType()),
	}, nil
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	return f, nil
}
