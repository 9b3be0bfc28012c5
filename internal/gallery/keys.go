package gallery

import "strings"

// Keyboard keys understood by the lightbox
const (
	KeyEscape     = "Escape"
	KeyArrowRight = "ArrowRight"
	KeyArrowLeft  = "ArrowLeft"
)

// HandleKey applies a keyboard key while an image is open and reports
// whether the key was handled. Keys are ignored while Idle.
func (v *View) HandleKey(key string) bool {
	if !v.Viewing() {
		return false
	}

	switch key {
	case KeyEscape:
		v.Close()
	case KeyArrowRight:
		v.Next()
	case KeyArrowLeft:
		v.Prev()
	case "+", "=":
		v.ZoomIn()
	case "-":
		v.ZoomOut()
	case "0":
		v.ResetTransform()
	default:
		switch strings.ToLower(key) {
		case "r":
			v.RotateClockwise()
		case "l":
			v.RotateCounterClockwise()
		default:
			return false
		}
	}
	return true
}
