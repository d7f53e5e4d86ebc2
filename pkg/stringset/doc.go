/*
Package stringset implements an approximate string matching index.

Strings are bucketed by length. Each bucket is a tree of clusters: every
cluster keeps a character-set profile, one set of runes per position, that
covers every entry below it. A leaf whose profile grows too wide is split in
two by a greedy single-linkage clustering.

Lookups run a best-first search over the tree. A cluster is ranked by the
distance between the query and its profile, which never exceeds the distance
to any entry it holds, so entries come out in non-decreasing order of their
exact distance without touching most of the collection:

	idx := stringset.NewCaseInsensitive()
	idx.Add("cat", nil)
	idx.Add("car", nil)

	cur := idx.Lookup("cst")
	for m := range cur.All() {
		fmt.Println(m.Hint.Key, m.Cost)
	}

The distance is a Levenshtein variant in which inserting characters in front
of or behind the query is almost free, so a query that is a fragment of an
entry scores close to zero.

An Index is not safe for concurrent use. A Cursor reads the live tree; adding
entries while a Cursor is open leaves its ordering undefined.

# Persisted format

The tree is written as nested sequences. SI (0x0f) opens a node and SO (0x0e)
closes it. Internal nodes hold their children back to back; leaves hold
entry tokens, each followed by RS (0x1e). A token is a JSON object
{"k": key, "p": payload}; a token that is not a JSON object is taken as a bare
key with no payload.
*/
package stringset
