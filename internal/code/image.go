package code

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/fxamacker/cbor/v2"
)

// ImageVersion is the current binary image format revision.
const ImageVersion = 1

var ErrImageVersion = errors.New("unsupported image version")

// Image is the binary form of a program, written by `intcode pack`.
type Image struct {
	Version int     `cbor:"1,keyasint"`
	Name    string  `cbor:"2,keyasint,omitempty"`
	Words   []int64 `cbor:"3,keyasint"`
}

var imageEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("code: failed to create CBOR enc mode: %v", err))
	}
	imageEncMode = em
}

func MarshalImage(p Program, name string) ([]byte, error) {
	return imageEncMode.Marshal(&Image{Version: ImageVersion, Name: name, Words: p})
}

func UnmarshalImage(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("code: unmarshal image: %w", err)
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("%w %d", ErrImageVersion, img.Version)
	}
	return &img, nil
}

// Load accepts either program text or image bytes. Images are recognised
// by a leading byte that cannot start program text.
func Load(data []byte) (Program, error) {
	if isImage(data) {
		img, err := UnmarshalImage(data)
		if err != nil {
			return nil, err
		}
		return Program(img.Words), nil
	}
	return Parse(string(data))
}

func isImage(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	b := rune(data[0])
	if b == '-' || b == '+' || b == ',' || unicode.IsDigit(b) || unicode.IsSpace(b) {
		return false
	}
	// CBOR map header (major type 5).
	return data[0]&0xe0 == 0xa0
}
