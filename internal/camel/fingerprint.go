package camel

import "github.com/cespare/xxhash/v2"

// Fingerprint returns a fast, non-cryptographic hash of the camel
// positions and rolled bits, suitable as a transposition-table key.
// Terrain (oasis/desert) is intentionally excluded: every board that
// flows through a single solve shares one terrain layout, so folding it
// into the key would only waste hash bits (see DESIGN.md).
func (b Board) Fingerprint() uint64 {
	var packed [NumCamels]uint16
	for c := 0; c < NumCamels; c++ {
		tile, pos := b.findCamel(c)
		// tile: 0..16 (5 bits), pos: 0..4 (3 bits), rolled: 1 bit.
		v := uint16(tile)<<4 | uint16(pos)<<1
		if b.rolled[c] {
			v |= 1
		}
		packed[c] = v
	}

	var buf [NumCamels * 2]byte
	for i, v := range packed {
		buf[i*2] = byte(v)
		buf[i*2+1] = byte(v >> 8)
	}
	return xxhash.Sum64(buf[:])
}
