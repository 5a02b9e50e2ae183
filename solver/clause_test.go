package solver

import "testing"

func TestClauseFlags(t *testing.T) {
	c := NewLearnedClause(litsOf(1, -2, 3))
	if !c.Learned() {
		t.Errorf("clause should be learned")
	}
	if c.Garbage() {
		t.Errorf("fresh clause should not be garbage")
	}
	c.setLbd(5)
	if c.lbd() != 5 {
		t.Errorf("expected lbd 5, got %d", c.lbd())
	}
	c.lock()
	if !c.isLocked() {
		t.Errorf("clause should be locked")
	}
	if c.lbd() != 5 {
		t.Errorf("locking should not change the lbd, got %d", c.lbd())
	}
	c.setGarbage()
	if !c.Garbage() || !c.Learned() || !c.isLocked() {
		t.Errorf("garbage marking should not clear other flags")
	}
	c.incLbd()
	if c.lbd() != 6 {
		t.Errorf("expected lbd 6, got %d", c.lbd())
	}
	c.unlock()
	if c.isLocked() {
		t.Errorf("clause should be unlocked")
	}
}

func TestClauseNotLearned(t *testing.T) {
	c := NewClause(litsOf(1, 2))
	if c.Learned() {
		t.Errorf("original clause should not be learned")
	}
	if c.isLocked() {
		t.Errorf("an original clause is never considered locked")
	}
	c.lock() // Locking only makes sense for learned clauses
	if c.isLocked() {
		t.Errorf("an original clause is never considered locked")
	}
	if c.ID() != 0 {
		t.Errorf("clause outside a database should have no id, got %d", c.ID())
	}
}

func TestClauseCNF(t *testing.T) {
	c := NewClause(litsOf(1, -2, 3))
	if cnf := c.CNF(); cnf != "1 -2 3 0" {
		t.Errorf("wrong CNF representation %q", cnf)
	}
}
