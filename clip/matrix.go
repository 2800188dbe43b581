package clip

import "github.com/pkg/errors"

// Matrix dimensions.
const (
	Tracks = 16
	Scenes = 8
	Size   = Tracks * Scenes
)

// ErrOutOfRange is returned for coordinates outside the matrix.
var ErrOutOfRange = errors.New("clip coordinates out of range")

// Index returns the matrix index of the clip at (track, scene).
// Both coordinates are 1-indexed.
func Index(track, scene int) (int, error) {
	if track < 1 || track > Tracks || scene < 1 || scene > Scenes {
		return 0, errors.Wrapf(ErrOutOfRange, "track %d scene %d", track, scene)
	}
	return (scene-1)*Tracks + (track - 1), nil
}

// Coords is the inverse of Index.
func Coords(index int) (track, scene int) {
	return index%Tracks + 1, index/Tracks + 1
}

// Matrix holds every clip slot, one row of tracks per scene.
type Matrix [Size]Clip

// At returns the clip at (track, scene).
func (m *Matrix) At(track, scene int) (*Clip, error) {
	i, err := Index(track, scene)
	if err != nil {
		return nil, err
	}
	return &m[i], nil
}

// UpdateIntensities recomputes the intensity of every clip.
func (m *Matrix) UpdateIntensities() {
	for i := range m {
		m[i].UpdateIntensity()
	}
}

// Intensities copies every clip's intensity into frame, which must hold
// at least Size bytes.
func (m *Matrix) Intensities(frame []byte) {
	for i := range m {
		frame[i] = m[i].Intensity
	}
}
