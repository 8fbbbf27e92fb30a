package deps

import (
	"time"

	"github.com/aryodp/edgegate/internal/auth"
	"github.com/aryodp/edgegate/internal/cache"
	"github.com/aryodp/edgegate/internal/logger"
	"github.com/aryodp/edgegate/internal/probe"
	"github.com/aryodp/edgegate/internal/query"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	Cache  *cache.DatasetCache // current dataset, read-only for handlers
	Query  *query.Engine       // pagination/filter pipeline over Cache
	Prober *probe.Client       // outbound reachability checks
	Users  *auth.Store         // static credentials for /login

	ReloadTrigger chan struct{} // channel to trigger a manual dataset refresh

	CheckBurst        int  // per-IP burst for /check
	CheckRefillPerMin int  // per-IP refill rate for /check
	TrustProxy        bool // resolve client IP from proxy headers
}
