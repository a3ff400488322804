package sysboost

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cpuppm/sysboost/ppm"
)

// User identifies a boost requester.
type User int

const (
	// UserWiFi is the Wi-Fi driver.
	UserWiFi User = iota
	// UserPerfServ is the performance service daemon.
	UserPerfServ
	// UserUSB is the USB stack.
	UserUSB
	// UserUT is the unit-test harness.
	UserUT

	// NumUsers is the number of known users.
	NumUsers
)

var userNames = [NumUsers]string{
	UserWiFi:     "WIFI",
	UserPerfServ: "PERFSERV",
	UserUSB:      "USB",
	UserUT:       "UT",
}

// Valid reports whether u is a known user.
func (u User) Valid() bool {
	return u >= 0 && u < NumUsers
}

func (u User) String() string {
	if !u.Valid() {
		return fmt.Sprintf("User(%d)", int(u))
	}
	return userNames[u]
}

// ParseUser accepts a user number or a case-insensitive display name.
func ParseUser(s string) (User, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if u := User(n); u.Valid() {
			return u, nil
		}
		return 0, fmt.Errorf("%w: %d", ErrInvalidUser, n)
	}
	for u, name := range userNames {
		if strings.EqualFold(name, s) {
			return User(u), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidUser, s)
}

// userData is one registry row.
type userData struct {
	user User
	// last raw values of the simple requests, for the text dumps
	coreReq int
	freqReq int
	limits  []ppm.ClusterLimit
}

func newUserData(u User, clusters int) userData {
	return userData{
		user:   u,
		limits: ppm.UnsetClusterLimits(clusters),
	}
}

// UserState is a read-only copy of one registry row.
type UserState struct {
	User        User
	Name        string
	CoreRequest int
	FreqRequest int
	Limits      []ppm.ClusterLimit
}

func (d *userData) snapshot() UserState {
	return UserState{
		User:        d.user,
		Name:        d.user.String(),
		CoreRequest: d.coreReq,
		FreqRequest: d.freqReq,
		Limits:      append([]ppm.ClusterLimit(nil), d.limits...),
	}
}
