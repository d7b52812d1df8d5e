package schema

import (
	"context"
	"errors"
	"testing"
)

func TestRelationshipDeclaration(t *testing.T) {
	t.Run("declare and look up", func(t *testing.T) {
		cd := NewClass("Cd")
		join := NewClass("CdTrackJoin")

		rel, err := cd.HasMany("cd_tracks", join, On("cdid", "cdid"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rel.Kind != KindHasMany {
			t.Errorf("expected has_many, got %s", rel.Kind)
		}
		if rel.DeclaredOn != cd {
			t.Error("declaring class should be recorded")
		}

		got, err := cd.Relationship("cd_tracks")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != rel {
			t.Error("lookup should return the declared descriptor")
		}
	})

	t.Run("duplicate declaration", func(t *testing.T) {
		cd := NewClass("Cd")
		join := NewClass("CdTrackJoin")

		if _, err := cd.HasMany("cd_tracks", join, On("cdid", "cdid")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := cd.HasMany("cd_tracks", join, On("cdid", "cdid"))
		if !errors.Is(err, ErrDuplicateRelation) {
			t.Errorf("expected ErrDuplicateRelation, got %v", err)
		}
	})

	t.Run("unknown relationship", func(t *testing.T) {
		cd := NewClass("Cd")

		_, err := cd.Relationship("nope")
		if !errors.Is(err, ErrUnknownRelation) {
			t.Errorf("expected ErrUnknownRelation, got %v", err)
		}
	})
}

func TestCondition(t *testing.T) {
	t.Run("first pair and prefixes", func(t *testing.T) {
		cond := On("cdid", "discid").And("label", "label")

		key, value, ok := cond.First()
		if !ok {
			t.Fatal("expected a first pair")
		}
		if key != "foreign.cdid" || value != "self.discid" {
			t.Errorf("unexpected first pair: %s -> %s", key, value)
		}
		if StripPrefix(key) != "cdid" || StripPrefix(value) != "discid" {
			t.Error("prefix stripping failed")
		}
		if cond.Len() != 2 {
			t.Errorf("expected 2 pairs, got %d", cond.Len())
		}
	})

	t.Run("insertion order preserved", func(t *testing.T) {
		cond := NewCondition()
		cond.SetRaw("foreign.b", "self.b")
		cond.SetRaw("foreign.a", "self.a")

		pairs := cond.Pairs()
		if len(pairs) != 2 || pairs[0][0] != "foreign.b" {
			t.Errorf("expected insertion order, got %v", pairs)
		}
	})

	t.Run("empty and nil conditions", func(t *testing.T) {
		var nilCond *Condition
		if _, _, ok := nilCond.First(); ok {
			t.Error("nil condition should have no pairs")
		}
		if _, _, ok := NewCondition().First(); ok {
			t.Error("empty condition should have no pairs")
		}
	})
}

func TestAccessorDispatch(t *testing.T) {
	t.Run("bind and invoke", func(t *testing.T) {
		cd := NewClass("Cd")

		err := cd.BindAccessor("shout", func(ctx context.Context, record Record) (any, error) {
			return record["title"], nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := cd.Invoke(context.Background(), "shout", Record{"title": "Ziggy Stardust"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "Ziggy Stardust" {
			t.Errorf("unexpected result: %v", got)
		}
	})

	t.Run("duplicate binding", func(t *testing.T) {
		cd := NewClass("Cd")
		noop := func(ctx context.Context, record Record) (any, error) { return nil, nil }

		cd.BindAccessor("shout", noop)
		err := cd.BindAccessor("shout", noop)
		if !errors.Is(err, ErrDuplicateAccessor) {
			t.Errorf("expected ErrDuplicateAccessor, got %v", err)
		}
	})

	t.Run("unknown accessor", func(t *testing.T) {
		cd := NewClass("Cd")

		_, err := cd.Invoke(context.Background(), "nope", Record{})
		if !errors.Is(err, ErrUnknownAccessor) {
			t.Errorf("expected ErrUnknownAccessor, got %v", err)
		}
	})

	t.Run("inherited accessor", func(t *testing.T) {
		registry := NewRegistry()
		parent := NewClass("Cd")
		registry.Register(parent)

		parent.BindAccessor("shout", func(ctx context.Context, record Record) (any, error) {
			return "from parent", nil
		})

		child, err := registry.Derive("PromoCd", "Cd")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := child.Invoke(context.Background(), "shout", Record{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "from parent" {
			t.Errorf("unexpected result: %v", got)
		}
	})

	t.Run("many-to-many accessor without traverser", func(t *testing.T) {
		registry := NewRegistry()
		cd := NewClass("Cd")
		registry.Register(cd)

		if err := cd.ManyToMany("tracks", "cd_tracks", "trackid", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err := cd.Invoke(context.Background(), "tracks", Record{"cdid": 1})
		if !errors.Is(err, ErrNoTraverser) {
			t.Errorf("expected ErrNoTraverser, got %v", err)
		}
	})
}
