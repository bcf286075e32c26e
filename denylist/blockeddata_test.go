package denylist

import "testing"

func TestInsertSortedDedup(t *testing.T) {
	list := []string{"a", "c"}
	list, inserted := insertSorted(list, "b")
	if !inserted {
		t.Fatalf("inserted = false, want true")
	}
	want := []string{"a", "b", "c"}
	if !equalStrings(list, want) {
		t.Errorf("list = %v, want %v", list, want)
	}

	list, inserted = insertSorted(list, "b")
	if inserted {
		t.Errorf("duplicate insert reported inserted = true")
	}
}

func TestRemoveSorted(t *testing.T) {
	list := []string{"a", "b", "c"}
	list, removed := removeSorted(list, "b")
	if !removed {
		t.Fatalf("removed = false, want true")
	}
	want := []string{"a", "c"}
	if !equalStrings(list, want) {
		t.Errorf("list = %v, want %v", list, want)
	}

	_, removed = removeSorted(list, "zzz")
	if removed {
		t.Errorf("removing absent value reported removed = true")
	}
}

func TestInsertRemoveAsn(t *testing.T) {
	var asns []Asn
	asns = insertAsn(asns, 701, []string{"1.2.3.0/24"})
	asns = insertAsn(asns, 100, []string{"5.6.7.0/24"})
	if len(asns) != 2 || asns[0].ASN != 100 || asns[1].ASN != 701 {
		t.Fatalf("asns not sorted: %+v", asns)
	}

	asns = insertAsn(asns, 100, []string{"9.9.9.0/24"})
	if len(asns) != 2 || asns[0].CIDRs[0] != "9.9.9.0/24" {
		t.Errorf("re-inserting ASN 100 did not replace CIDRs: %+v", asns)
	}

	asns, removed := removeAsn(asns, 701)
	if !removed || len(asns) != 1 {
		t.Errorf("removeAsn(701) = %v, %+v", removed, asns)
	}
}

func TestOptimizeFlags(t *testing.T) {
	bd := New()
	if bd.Any {
		t.Errorf("Any = true on empty BlockedData")
	}
	bd.Subjects, _ = insertSorted(bd.Subjects, "sub-1")
	bd.optimize()
	if !bd.Any || !bd.AnySubjects {
		t.Errorf("Any/AnySubjects not set after adding a subject: %+v", bd)
	}
	if bd.AnyCIDRs || bd.AnyASNs {
		t.Errorf("unrelated Any* flags incorrectly set: %+v", bd)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
