package stringset

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var entriesAdded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nearword_entries_added_total",
	Help: "Number of distinct entries added to string sets",
})

var duplicatesIgnored = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nearword_duplicate_entries_total",
	Help: "Number of add calls ignored because the key was already present",
})

var splitsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nearword_cluster_splits_total",
	Help: "Number of leaf clusters split in two",
})

var lookupsStarted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nearword_lookups_total",
	Help: "Number of lookups started",
})

var matchesYielded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nearword_lookup_matches_total",
	Help: "Number of matches handed out by lookup cursors",
})

var nodesExpanded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nearword_lookup_expansions_total",
	Help: "Number of tree nodes expanded by lookup cursors",
})
