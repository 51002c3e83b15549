//go:build !windows

package runner

// platformOutputDecoder passes tool output through unchanged; non-Windows
// consoles emit UTF-8.
func platformOutputDecoder() OutputDecoder {
	return func(data []byte) string {
		return string(data)
	}
}
