package crypto

// Wipe zeroes each slice in place. Go gives no guarantee that copies made
// by the runtime are cleared, so this only limits how long key material
// stays reachable.
func Wipe(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
	}
}
