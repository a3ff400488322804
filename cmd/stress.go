package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cpuppm/sysboost/ppm/sysboost"
)

var (
	stressWorkers int   // Concurrent request issuers
	stressOps     int   // Requests per worker
	stressSeed    int64 // Seed for random request generation
)

// stressResult counts request outcomes of one stress run.
type stressResult struct {
	Requests int64
	Accepted int64
	Rejected int64
	Triggers int
}

// stressCmd hammers the request API from concurrent users and checks that the
// final limit stays consistent after every call
var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Issue concurrent random requests and verify the final limit invariants",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadTopologyConfig(topologyPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		sys, err := newSystem(cfg, false)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer sys.close()

		start := time.Now()
		res, err := runStress(cmd.Context(), sys, stressWorkers, stressOps, stressSeed)
		if err != nil {
			logrus.Fatalf("stress failed: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "requests = %d, accepted = %d, rejected = %d, decisions = %d, elapsed = %s\n",
			res.Requests, res.Accepted, res.Rejected, res.Triggers, time.Since(start).Round(time.Millisecond))
	},
}

func runStress(ctx context.Context, sys *system, workers, ops int, seed int64) (stressResult, error) {
	if workers <= 0 || ops < 0 {
		return stressResult{}, fmt.Errorf("workers must be positive and ops non-negative, got %d and %d", workers, ops)
	}
	var requests, accepted, rejected atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		rng := rand.New(rand.NewSource(seed + int64(w)))
		g.Go(func() error {
			for i := 0; i < ops; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				err := randomRequest(rng, sys)
				requests.Add(1)
				switch {
				case err == nil:
					accepted.Add(1)
				case errors.Is(err, sysboost.ErrInvalidUser), errors.Is(err, sysboost.ErrInvalidCluster),
					errors.Is(err, sysboost.ErrInvalidValue), errors.Is(err, sysboost.ErrPolicyDisabled):
					rejected.Add(1)
				default:
					return err
				}
				if err := sys.policy.FinalLimit().CheckInvariants(); err != nil {
					return fmt.Errorf("after request %d: %w", i, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stressResult{}, err
	}
	return stressResult{
		Requests: requests.Load(),
		Accepted: accepted.Load(),
		Rejected: rejected.Load(),
		Triggers: sys.fw.Triggers(),
	}, nil
}

// randomRequest issues one request with arguments that are occasionally out
// of range, so the rejection paths run too.
func randomRequest(rng *rand.Rand, sys *system) error {
	topo := sys.topo
	user := sysboost.User(rng.Intn(int(sysboost.NumUsers) + 1))
	cluster := rng.Intn(topo.NumClusters() + 1)
	c := min(cluster, topo.NumClusters()-1)

	randCore := func() int {
		if rng.Intn(4) == 0 {
			return -1
		}
		return topo.MinCore(c) + rng.Intn(topo.MaxCore(c)-topo.MinCore(c)+2)
	}
	randFreq := func() int {
		if rng.Intn(4) == 0 {
			return -1
		}
		return topo.Freq(c, rng.Intn(topo.NumFreqs(c)))
	}

	switch rng.Intn(4) {
	case 0:
		return sys.policy.SetCore(user, rng.Intn(topo.NumPossibleCPUs()+2))
	case 1:
		freqs := []int{0, -1, randFreq()}
		return sys.policy.SetFreq(user, freqs[rng.Intn(len(freqs))])
	case 2:
		return sys.policy.SetClusterCoreLimit(user, cluster, randCore(), randCore())
	default:
		return sys.policy.SetClusterFreqLimit(user, cluster, randFreq(), randFreq())
	}
}

func init() {
	stressCmd.Flags().IntVar(&stressWorkers, "workers", 4, "Concurrent request issuers")
	stressCmd.Flags().IntVar(&stressOps, "ops", 1000, "Requests per worker")
	stressCmd.Flags().Int64Var(&stressSeed, "seed", 42, "Seed for random request generation")
}
