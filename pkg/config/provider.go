package config

import "github.com/knadh/koanf/v2"

// BytesProvider returns a koanf provider serving data as-is, for documents
// that were already read from somewhere other than the local disk.
func BytesProvider(data []byte) koanf.Provider {
	return &rawBytesProvider{bytes: data}
}
