package ports

import "time"

// Clock supplies the current time. benbjohnson/clock satisfies it.
type Clock interface {
	Now() time.Time
}
