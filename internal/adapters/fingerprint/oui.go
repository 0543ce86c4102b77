package fingerprint

import (
	"bufio"
	"context"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// DefaultCacheSize is the LRU size of the OUI database front cache.
const DefaultCacheSize = 1000

// CommonOUIs covers the radio vendors most often seen in the field.
var CommonOUIs = map[string]string{
	"00:03:93": "Apple",
	"00:17:F2": "Apple",
	"00:1B:63": "Apple",
	"3C:07:54": "Apple",
	"F0:18:98": "Apple",
	"00:1A:11": "Google",
	"F4:F5:D8": "Google",
	"00:40:96": "Cisco",
	"00:18:0A": "Cisco Meraki",
	"00:0C:41": "Cisco-Linksys",
	"00:12:17": "Cisco-Linksys",
	"00:13:10": "Cisco-Linksys",
	"00:25:9C": "Cisco-Linksys",
	"00:09:5B": "Netgear",
	"00:14:6C": "Netgear",
	"00:1D:0F": "TP-Link",
	"50:C7:BF": "TP-Link",
	"F4:F2:6D": "TP-Link",
	"00:0D:88": "D-Link",
	"00:1B:11": "D-Link",
	"00:26:5A": "D-Link",
	"00:0E:A6": "ASUSTek",
	"00:1F:C6": "ASUSTek",
	"00:16:32": "Samsung",
	"00:1E:E1": "Samsung",
	"00:50:F2": "Microsoft",
	"00:0B:86": "Aruba",
	"00:15:6D": "Ubiquiti",
	"24:A4:3C": "Ubiquiti",
	"F0:9F:C2": "Ubiquiti",
	"B8:27:EB": "Raspberry Pi",
	"DC:A6:32": "Raspberry Pi",
	"24:0A:C4": "Espressif",
	"30:AE:A4": "Espressif",
	"A4:CF:12": "Espressif",
	"00:10:18": "Broadcom",
	"00:90:4C": "Broadcom",
	"00:E0:4C": "Realtek",
	"00:0C:E7": "MediaTek",
	"00:1F:3B": "Intel",
	"00:21:6A": "Intel",
	"00:18:82": "Huawei",
	"00:E0:FC": "Huawei",
	"28:6C:07": "Xiaomi",
	"00:9E:C8": "Xiaomi",
}

// Options selects the sources of Open.
type Options struct {
	DBPath    string // SQLite OUI registry, optional
	CacheSize int
	OUIFile   string // "AA:BB:CC Vendor" text file, optional
}

// Open builds the lookup chain: the OUI database backed by the static
// table, then the static table alone. A text file is imported into the
// database so later runs resolve its prefixes without it; when there is no
// usable database the file is consulted directly, ahead of the static table.
// A database that cannot be opened is logged and skipped.
func Open(opts Options) VendorRepository {
	static := NewStaticVendorRepository(CommonOUIs)
	var chain []VendorRepository

	var fileRepo *FileVendorRepository
	if opts.OUIFile != "" {
		fileRepo = NewFileVendorRepository()
		if err := fileRepo.LoadFromFile(opts.OUIFile); err != nil {
			log.Printf("Warning: failed to load OUI file %s: %v", opts.OUIFile, err)
			fileRepo = nil
		}
	}

	if opts.DBPath != "" {
		cacheSize := opts.CacheSize
		if cacheSize <= 0 {
			cacheSize = DefaultCacheSize
		}
		db, err := NewOUIDatabase(opts.DBPath, cacheSize, static)
		if err != nil {
			log.Printf("Warning: failed to initialize OUI database: %v. Using fallback static map.", err)
		} else {
			ctx := context.Background()
			if fileRepo != nil {
				if err := ImportFile(ctx, db, fileRepo); err != nil {
					log.Printf("Warning: failed to import %s into OUI database: %v", opts.OUIFile, err)
				} else {
					log.Printf("Imported %d OUI entries from %s", fileRepo.Len(), opts.OUIFile)
					fileRepo = nil
				}
			}
			if stats, err := db.GetStats(ctx); err == nil {
				log.Printf("OUI database initialized: %d entries, last updated %s", stats.TotalEntries, stats.LastUpdated)
			}
			chain = append(chain, db)
		}
	}

	if fileRepo != nil {
		chain = append([]VendorRepository{fileRepo}, chain...)
	}
	chain = append(chain, static)
	return NewCompositeVendorRepository(chain...)
}

// ImportFile writes every prefix loaded in src to w, replacing entries
// that already exist.
func ImportFile(ctx context.Context, w VendorWriter, src *FileVendorRepository) error {
	return w.BulkInsertOUIs(ctx, src.Entries(time.Now()))
}

// FileVendorRepository loads vendors from a text file
type FileVendorRepository struct {
	vendors map[string]string
	mu      sync.RWMutex
}

func NewFileVendorRepository() *FileVendorRepository {
	return &FileVendorRepository{
		vendors: make(map[string]string),
	}
}

// LoadFromFile loads OUI data from a file.
// Supports format: "XX:XX:XX Vendor Name" or "XX-XX-XX   Vendor Name"
func (f *FileVendorRepository) LoadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	newOUIs := make(map[string]string)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 8 || strings.HasPrefix(line, "#") {
			continue
		}

		prefix := normalizeOUI(line[0:8])
		vendor := strings.TrimSpace(line[8:])
		if isValidOUI(prefix) && vendor != "" {
			newOUIs[prefix] = vendor
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	for k, v := range newOUIs {
		f.vendors[k] = v
	}
	f.mu.Unlock()

	return nil
}

// Entries lists the loaded prefixes in order, stamped with updated.
func (f *FileVendorRepository) Entries(updated time.Time) []OUIEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	entries := make([]OUIEntry, 0, len(f.vendors))
	for prefix, vendor := range f.vendors {
		entries = append(entries, OUIEntry{Prefix: prefix, Vendor: vendor, LastUpdated: updated})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Prefix < entries[j].Prefix })
	return entries
}

// Len returns the number of loaded prefixes.
func (f *FileVendorRepository) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vendors)
}

func (f *FileVendorRepository) LookupVendor(ctx context.Context, mac domain.MAC) (string, error) {
	f.mu.RLock()
	vendor, ok := f.vendors[mac.OUIString()]
	f.mu.RUnlock()

	if !ok {
		return "", ErrVendorNotFound
	}
	return vendor, nil
}

func (f *FileVendorRepository) Close() error {
	f.mu.Lock()
	f.vendors = make(map[string]string)
	f.mu.Unlock()
	return nil
}

func normalizeOUI(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "-", ":"))
}

func isValidOUI(s string) bool {
	if len(s) != 8 || s[2] != ':' || s[5] != ':' {
		return false
	}
	for i, c := range s {
		if i == 2 || i == 5 {
			continue
		}
		if !strings.ContainsRune("0123456789ABCDEF", c) {
			return false
		}
	}
	return true
}
