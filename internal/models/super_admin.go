package models

import "time"

// Dashboard holds platform-wide totals for the super-admin panel
type Dashboard struct {
	BusinessDate        string    `json:"business_date"`
	TotalUsers          int64     `json:"total_users"`
	TotalOrganizations  int64     `json:"total_organizations"`
	ActiveSubscriptions int64     `json:"active_subscriptions"`
	OrdersToday         int64     `json:"orders_today"`
	RevenueToday        float64   `json:"revenue_today"`
	GeneratedAt         time.Time `json:"generated_at"`
}

type UserList struct {
	Users []*User `json:"users"`
	Total int64   `json:"total"`
	Skip  int     `json:"skip"`
	Limit int     `json:"limit"`
}

type UserDetail struct {
	User  *User              `json:"user"`
	Stats *OrganizationStats `json:"stats"`
}

// OrganizationDeletion reports what a cascading user delete removed
type OrganizationDeletion struct {
	UserID         string           `json:"user_id"`
	OrganizationID string           `json:"organization_id"`
	Deleted        map[string]int64 `json:"deleted"`
}

// OrderDiagnostics exposes the date boundaries a cached order view was computed with
type OrderDiagnostics struct {
	OrganizationID    string        `json:"organization_id"`
	Now               time.Time     `json:"now"`
	TodayStartUTC     time.Time     `json:"today_start_utc"`
	YesterdayStartUTC time.Time     `json:"yesterday_start_utc"`
	ActiveOrders      *ActiveOrders `json:"active_orders,omitempty"`
	TodayBills        *TodayBills   `json:"today_bills,omitempty"`
}

// SystemMetricsSample is one reading of the periodic metrics sampler
type SystemMetricsSample struct {
	Timestamp      time.Time `json:"timestamp"`
	Goroutines     int       `json:"goroutines"`
	HeapAllocBytes uint64    `json:"heap_alloc_bytes"`
	HeapSysBytes   uint64    `json:"heap_sys_bytes"`
	NumGC          uint32    `json:"num_gc"`
	MongoLatencyMs float64   `json:"mongo_latency_ms"`
	MongoOK        bool      `json:"mongo_ok"`
	CacheLatencyMs float64   `json:"cache_latency_ms"`
	CacheOK        bool      `json:"cache_ok"`
	CacheBackend   string    `json:"cache_backend"`
}
