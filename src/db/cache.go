package db

import (
	"log"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
)

// Entries expire after cacheTTL even without a write.
const cacheTTL = 10 * time.Minute

// Cache keys are tracked per cache name so a whole cache can be cleared from
// the admin endpoint.
var (
	Cache         *ristretto.Cache
	CategoryKeys  = newKeySet("categories")
	RecurringKeys = newKeySet("recurring")
)

// keySet tracks the live keys of one cache. gen moves on every delete or
// clear; a fill that read the store under an older gen is dropped.
type keySet struct {
	sync.RWMutex
	name string
	gen  uint64
	m    map[string]struct{}
}

func newKeySet(name string) *keySet {
	return &keySet{name: name, m: make(map[string]struct{})}
}

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

func (k *keySet) key(householdID uuid.UUID) string {
	return k.name + ":" + householdID.String()
}

func (k *keySet) get(householdID uuid.UUID) (interface{}, bool) {
	if Cache == nil {
		return nil, false
	}
	return Cache.Get(k.key(householdID))
}

// version must be read before querying the store for a value to set.
func (k *keySet) version() uint64 {
	k.RLock()
	defer k.RUnlock()
	return k.gen
}

// set stores value unless the cache was invalidated since version was read.
func (k *keySet) set(householdID uuid.UUID, version uint64, value interface{}) bool {
	if Cache == nil {
		return false
	}
	key := k.key(householdID)
	k.Lock()
	if k.gen != version {
		k.Unlock()
		return false
	}
	k.m[key] = struct{}{}
	Cache.SetWithTTL(key, value, 1, cacheTTL)
	k.Unlock()
	Cache.Wait()
	return true
}

func (k *keySet) del(householdID uuid.UUID) {
	key := k.key(householdID)
	k.Lock()
	defer k.Unlock()
	k.gen++
	delete(k.m, key)
	if Cache != nil {
		Cache.Del(key)
	}
}

// clear drops every tracked key and returns how many there were.
func (k *keySet) clear() int {
	k.Lock()
	defer k.Unlock()
	k.gen++
	n := len(k.m)
	if Cache != nil {
		for key := range k.m {
			Cache.Del(key)
		}
	}
	k.m = make(map[string]struct{})
	return n
}

func GetCategoryCache(householdID uuid.UUID) (interface{}, bool) {
	return CategoryKeys.get(householdID)
}

func CategoryCacheVersion() uint64 {
	return CategoryKeys.version()
}

func SetCategoryCache(householdID uuid.UUID, version uint64, value interface{}) bool {
	return CategoryKeys.set(householdID, version, value)
}

func DelCategoryCache(householdID uuid.UUID) {
	CategoryKeys.del(householdID)
}

func GetRecurringCache(householdID uuid.UUID) (interface{}, bool) {
	return RecurringKeys.get(householdID)
}

func RecurringCacheVersion() uint64 {
	return RecurringKeys.version()
}

func SetRecurringCache(householdID uuid.UUID, version uint64, value interface{}) bool {
	return RecurringKeys.set(householdID, version, value)
}

func DelRecurringCache(householdID uuid.UUID) {
	RecurringKeys.del(householdID)
}

// ClearCacheByName clears the named cache ("categories", "recurring" or
// "all") and reports whether the name was known.
func ClearCacheByName(name string) (int, bool) {
	switch name {
	case CategoryKeys.name:
		return CategoryKeys.clear(), true
	case RecurringKeys.name:
		return RecurringKeys.clear(), true
	case "all":
		return CategoryKeys.clear() + RecurringKeys.clear(), true
	}
	return 0, false
}
