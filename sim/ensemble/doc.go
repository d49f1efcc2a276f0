// Package ensemble simulates a population of independent leaky
// integrate-and-fire realizations with Euler-Maruyama integration.
//
// Each realization is a State machine stepped by Dynamics. It draws only from
// its own stream, sim.PartitionedRNG.ForRealization(i), so spike trains are
// bit-for-bit reproducible from the seed regardless of how realizations are
// spread across workers.
package ensemble
