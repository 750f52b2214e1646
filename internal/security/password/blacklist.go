package password

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Blacklist es un set inmutable de passwords prohibidas (lower-case).
type Blacklist struct {
	data map[string]struct{}
}

// LoadBlacklist lee un archivo con una password por línea (# comenta).
// path vacío retorna una lista vacía.
func LoadBlacklist(path string) (*Blacklist, error) {
	bl := &Blacklist{data: map[string]struct{}{}}
	if strings.TrimSpace(path) == "" {
		return bl, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(strings.ToLower(sc.Text()))
		if s != "" && !strings.HasPrefix(s, "#") {
			bl.data[s] = struct{}{}
		}
	}
	return bl, sc.Err()
}

func (b *Blacklist) Contains(pwd string) bool {
	if b == nil {
		return false
	}
	_, ok := b.data[strings.ToLower(strings.TrimSpace(pwd))]
	return ok
}
