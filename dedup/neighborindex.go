package dedup

import (
	"github.com/biogo/store/llrb"
	"github.com/gralign/bwamem/region"
)

// regionKey orders AlnRegions by (Rid, Rb), the same "contig then position"
// ordering bampair/shard_info.go uses for its llrb.Tree of shard boundaries,
// generalized here to index finalized regions instead of BAM shards. seq
// disambiguates regions that share (Rid, Rb) (e.g. two seeds extending to
// the same start but different ends), since the tree has no notion of
// duplicate keys.
type regionKey struct {
	rid    int32
	rb     int64
	seq    int
	region *region.AlnRegion
}

func (k regionKey) Compare(c2 llrb.Comparable) int {
	o := c2.(regionKey)
	if k.rid != o.rid {
		return int(k.rid) - int(o.rid)
	}
	if k.rb != o.rb {
		if k.rb < o.rb {
			return -1
		}
		return 1
	}
	return k.seq - o.seq
}

// neighborIndex supports the DedupPatch backward-window walk (spec.md §4.5):
// for a region ri, find the region immediately before it in (Rid, Rb) order,
// then the one before that, stopping once the ref gap exceeds maxChainGap.
type neighborIndex struct {
	tree llrb.Tree
	seq  map[*region.AlnRegion]int
}

// buildNeighborIndex inserts every region keyed by its position in the
// caller's (Rid, Re)-sorted slice, so seq ties break in the same order
// Process already established.
func buildNeighborIndex(sorted []*region.AlnRegion) *neighborIndex {
	idx := &neighborIndex{seq: make(map[*region.AlnRegion]int, len(sorted))}
	for i, r := range sorted {
		idx.tree.Insert(regionKey{rid: r.Rid, rb: r.Rb, seq: i, region: r})
		idx.seq[r] = i
	}
	return idx
}

// predecessorOf returns the region immediately before r in tree order, or
// nil if none shares r's Rid.
func (idx *neighborIndex) predecessorOf(r *region.AlnRegion) *region.AlnRegion {
	c := idx.tree.Floor(regionKey{rid: r.Rid, rb: r.Rb, seq: idx.seq[r] - 1})
	if c == nil {
		return nil
	}
	k := c.(regionKey)
	if k.rid != r.Rid {
		return nil
	}
	return k.region
}
