// Package procfs renders the sysboost policy as four text control files:
// reads dump each user's requests followed by the final limit, writes parse
// whitespace-separated decimal integers and forward them to the request API.
package procfs

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/cpuppm/sysboost/ppm/sysboost"
)

// MaxWriteSize is the largest accepted write, one page.
const MaxWriteSize = 4096

// ErrWriteTooLarge is returned for writes over MaxWriteSize.
var ErrWriteTooLarge = errors.New("write exceeds one page")

// Entry is one control file.
type Entry struct {
	Name  string
	show  func(w io.Writer) error
	write func(buf string)
}

// Show writes the file content to w.
func (e *Entry) Show(w io.Writer) error {
	return e.show(w)
}

// Write parses p and applies it. Malformed input is logged and ignored; the
// full length is always reported so the writer never retries.
func (e *Entry) Write(p []byte) (int, error) {
	if len(p) > MaxWriteSize {
		return 0, ErrWriteTooLarge
	}
	e.write(string(p))
	return len(p), nil
}

// Entries returns the four control files of p.
func Entries(p *sysboost.Policy) []*Entry {
	return []*Entry{
		{
			Name: "sysboost_core",
			show: func(w io.Writer) error {
				return showSimple(w, p, func(u sysboost.UserState) int { return u.CoreRequest })
			},
			write: func(buf string) {
				var user, core int
				if _, err := fmt.Sscanf(buf, "%d %d", &user, &core); err != nil {
					logrus.Warnf("@sysboost_core write: Invalid input!")
					return
				}
				_ = p.SetCore(sysboost.User(user), core)
			},
		},
		{
			Name: "sysboost_freq",
			show: func(w io.Writer) error {
				return showSimple(w, p, func(u sysboost.UserState) int { return u.FreqRequest })
			},
			write: func(buf string) {
				var user, freq int
				if _, err := fmt.Sscanf(buf, "%d %d", &user, &freq); err != nil {
					logrus.Warnf("@sysboost_freq write: Invalid input!")
					return
				}
				_ = p.SetFreq(sysboost.User(user), freq)
			},
		},
		{
			Name: "sysboost_cluster_core_limit",
			show: func(w io.Writer) error {
				return showClusters(w, p,
					func(u sysboost.UserState) int { return u.CoreRequest },
					func(u sysboost.UserState, i int) (int, int) {
						return u.Limits[i].MinCore.Raw(), u.Limits[i].MaxCore.Raw()
					})
			},
			write: func(buf string) {
				var user, cluster, minCore, maxCore int
				if _, err := fmt.Sscanf(buf, "%d %d %d %d", &user, &cluster, &minCore, &maxCore); err != nil {
					logrus.Warnf("@sysboost_cluster_core_limit write: Invalid input!")
					return
				}
				_ = p.SetClusterCoreLimit(sysboost.User(user), cluster, minCore, maxCore)
			},
		},
		{
			Name: "sysboost_cluster_freq_limit",
			show: func(w io.Writer) error {
				return showClusters(w, p,
					func(u sysboost.UserState) int { return u.FreqRequest },
					func(u sysboost.UserState, i int) (int, int) {
						return u.Limits[i].MinFreqIdx.Raw(), u.Limits[i].MaxFreqIdx.Raw()
					})
			},
			write: func(buf string) {
				var user, cluster, minFreq, maxFreq int
				if _, err := fmt.Sscanf(buf, "%d %d %d %d", &user, &cluster, &minFreq, &maxFreq); err != nil {
					logrus.Warnf("@sysboost_cluster_freq_limit write: Invalid input!")
					return
				}
				_ = p.SetClusterFreqLimit(sysboost.User(user), cluster, minFreq, maxFreq)
			},
		},
	}
}

// Lookup finds an entry by name.
func Lookup(entries []*Entry, name string) (*Entry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

func showSimple(w io.Writer, p *sysboost.Policy, value func(sysboost.UserState) int) error {
	for _, u := range p.Users() {
		if _, err := fmt.Fprintf(w, "[%d] %s: %d\n", int(u.User), u.Name, value(u)); err != nil {
			return err
		}
	}
	return p.DumpFinalLimit(w)
}

func showClusters(w io.Writer, p *sysboost.Policy, value func(sysboost.UserState) int,
	bounds func(sysboost.UserState, int) (int, int)) error {
	for _, u := range p.Users() {
		if _, err := fmt.Fprintf(w, "[%d] %s: %d\t", int(u.User), u.Name, value(u)); err != nil {
			return err
		}
		for i := range u.Limits {
			lo, hi := bounds(u, i)
			if _, err := fmt.Fprintf(w, "(%d)(%d)", lo, hi); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return p.DumpFinalLimit(w)
}
