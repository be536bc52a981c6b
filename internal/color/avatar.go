// Package color derives placeholder avatar colors for users without an
// uploaded avatar.
package color

import (
	"fmt"
	"hash/fnv"
)

// ForUser returns a stable hex color for a user ID. Saturation and
// lightness are fixed so white initials stay readable on every hue.
func ForUser(userID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	hue := float64(h.Sum32() % 360)

	r, g, b := hslToRGB(hue, 0.45, 0.55)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts h in [0,360), s and l in [0,1] to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}

	h /= 360
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q

	return channel(p, q, h+1.0/3), channel(p, q, h), channel(p, q, h-1.0/3)
}

func channel(p, q, t float64) uint8 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}

	var v float64
	switch {
	case t < 1.0/6:
		v = p + (q-p)*6*t
	case t < 1.0/2:
		v = q
	case t < 2.0/3:
		v = p + (q-p)*(2.0/3-t)*6
	default:
		v = p
	}
	return uint8(v*255 + 0.5)
}
