package repository

import "testing"

func TestBuild(t *testing.T) {
	q := Build(WithID(7), WithOrderAsc("id"), WithOrderDesc("date_generated"), WithLimit(5))

	conds := q.Conditions()
	if len(conds) != 1 || conds[0].Field() != "id" || conds[0].Value() != int64(7) {
		t.Errorf("Conditions() = %v", conds)
	}
	if conds[0].String() != "id = 7" {
		t.Errorf("String() = %q", conds[0].String())
	}

	orders := q.Orders()
	if len(orders) != 2 || !orders[0].Ascending() || orders[1].Ascending() {
		t.Errorf("Orders() = %+v", orders)
	}
	if q.LimitValue() != 5 {
		t.Errorf("LimitValue() = %d, want 5", q.LimitValue())
	}
}

func TestBuild_Empty(t *testing.T) {
	q := Build()
	if len(q.Conditions()) != 0 || len(q.Orders()) != 0 || q.LimitValue() != 0 {
		t.Errorf("empty query should have no clauses: %+v", q)
	}
}

func TestQuery_AccessorsReturnCopies(t *testing.T) {
	q := Build(WithID(1))
	conds := q.Conditions()
	conds[0] = Condition{field: "other"}

	if q.Conditions()[0].Field() != "id" {
		t.Error("mutating the returned slice must not change the query")
	}
}

func TestWithFoldedCondition(t *testing.T) {
	q := Build(WithFoldedCondition("company_name", "Acme"), WithCondition("id", int64(2)))

	conds := q.Conditions()
	if len(conds) != 2 {
		t.Fatalf("Conditions() = %v", conds)
	}
	if !conds[0].Folded() || conds[1].Folded() {
		t.Errorf("only the first condition should be folded: %+v", conds)
	}
	if conds[0].String() != "lower(company_name) = lower(Acme)" {
		t.Errorf("String() = %q", conds[0].String())
	}
}
