package commands

import (
	"strconv"
	"time"
)

// durationFlag accepts either a Go duration ("45m") or a bare number of
// seconds ("300"). Operators coming from CI configs tend to write seconds.
type durationFlag time.Duration

func (d *durationFlag) String() string { return time.Duration(*d).String() }

func (d *durationFlag) Set(s string) error {
	if secs, err := strconv.Atoi(s); err == nil {
		*d = durationFlag(time.Duration(secs) * time.Second)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = durationFlag(v)
	return nil
}

func (d *durationFlag) Type() string { return "duration" }
