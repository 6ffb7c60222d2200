package treecs_test

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/visora/treecs"
)

func TestStoreOverwrite(t *testing.T) {
	store := treecs.NewComponentStore()
	e := treecs.NewEntityKey(1, 3)

	treecs.Register(store, e, Score(1))
	treecs.Register(store, e, Score(2))

	assert.Equal(t, Score(2), *treecs.GetComponent[Score](store, e))
	assert.Equal(t, 1, store.Count(reflect.TypeFor[Score]()))
}

func TestStoreDoesNotValidateLiveness(t *testing.T) {
	tree := treecs.New()
	dead, _ := tree.Add(tree.Root())
	tree.Remove(dead)

	treecs.Register(tree, dead, Tag("orphan"))
	assert.Equal(t, Tag("orphan"), *treecs.GetComponent[Tag](tree, dead))
}

func TestStoreAnyType(t *testing.T) {
	store := treecs.NewComponentStore()
	e := treecs.NewEntityKey(1, 1)

	treecs.Register[Animal](store, e, Dog{})
	treecs.Register(store, e, []int{1, 2, 3})
	treecs.Register(store, e, &Inventory{Items: []string{"key"}})
	treecs.Register(store, e, "plain string")

	assert.Equal(t, "Bark", (*treecs.GetComponent[Animal](store, e)).Noise())
	assert.Equal(t, []int{1, 2, 3}, *treecs.GetComponent[[]int](store, e))
	assert.Equal(t, "key", (*treecs.GetComponent[*Inventory](store, e)).Items[0])
	assert.Equal(t, "plain string", *treecs.GetComponent[string](store, e))
	assert.Nil(t, treecs.GetComponent[Inventory](store, e))

	treecs.Register[Animal](store, e, Cat{})
	assert.Equal(t, "Meow", (*treecs.GetComponent[Animal](store, e)).Noise())
}

func TestStoreMutationThroughPointer(t *testing.T) {
	store := treecs.NewComponentStore()
	e := treecs.NewEntityKey(1, 1)
	treecs.Register(store, e, Position{1, 1})

	p := treecs.GetComponent[Position](store, e)
	p.X = 100
	assert.Equal(t, 100, treecs.GetComponent[Position](store, e).X)

	ok := treecs.UpdateComponent(store, e, func(p *Position) { p.Y = 7 })
	assert.True(t, ok)
	assert.Equal(t, Position{100, 7}, *treecs.GetComponent[Position](store, e))

	ok = treecs.UpdateComponent(store, treecs.NewEntityKey(1, 9), func(p *Position) {})
	assert.False(t, ok)
}

func TestStorePointersStableAcrossGrowth(t *testing.T) {
	store := treecs.NewComponentStore()
	first := treecs.NewEntityKey(1, 0)
	treecs.Register(store, first, Position{X: -1})
	p := treecs.GetComponent[Position](store, first)

	for i := 1; i < 1000; i++ {
		treecs.Register(store, treecs.NewEntityKey(1, uint32(i)), Position{X: i})
	}

	assert.Same(t, p, treecs.GetComponent[Position](store, first))
	assert.Equal(t, -1, p.X)
	assert.Equal(t, 1000, store.Count(reflect.TypeFor[Position]()))
}

func TestStoreRemoveEntity(t *testing.T) {
	store := treecs.NewComponentStore()
	e1 := treecs.NewEntityKey(1, 1)
	e2 := treecs.NewEntityKey(1, 2)
	treecs.Register(store, e1, Position{})
	treecs.Register(store, e1, Name{"one"})
	treecs.Register(store, e2, Name{"two"})

	store.RemoveEntity(e1)

	assert.False(t, treecs.HasComponent[Position](store, e1))
	assert.False(t, treecs.HasComponent[Name](store, e1))
	assert.True(t, treecs.HasComponent[Name](store, e2))
	assert.Equal(t, []treecs.EntityKey{e2}, store.EntitiesWith(reflect.TypeFor[Name]()))
}

func TestStoreSlotReuse(t *testing.T) {
	store := treecs.NewComponentStore()
	e1 := treecs.NewEntityKey(1, 1)
	e2 := treecs.NewEntityKey(1, 2)
	treecs.Register(store, e1, Score(1))
	_, ok := treecs.RemoveComponent[Score](store, e1)
	require.True(t, ok)

	treecs.Register(store, e2, Score(2))
	assert.Nil(t, treecs.GetComponent[Score](store, e1))
	assert.Equal(t, Score(2), *treecs.GetComponent[Score](store, e2))
}

func TestStoreTypes(t *testing.T) {
	store := treecs.NewComponentStore()
	e := treecs.NewEntityKey(1, 1)
	treecs.Register(store, e, Score(1))
	treecs.Register(store, e, Name{})

	types := store.Types()
	require.Len(t, types, 2)
	assert.Equal(t, "treecs_test.Name", types[0].String())
	assert.Equal(t, "treecs_test.Score", types[1].String())
	assert.True(t, store.HasType(reflect.TypeFor[Score](), e))

	store.Clear()
	assert.Equal(t, 0, store.Count(reflect.TypeFor[Score]()))
}

func TestBorrow(t *testing.T) {
	store := treecs.NewComponentStore()
	e := treecs.NewEntityKey(1, 1)
	treecs.Register(store, e, Position{1, 2})

	assert.Nil(t, treecs.Borrow[Name](store, e))
	assert.Nil(t, treecs.BorrowMut[Position](store, treecs.NewEntityKey(1, 2)))

	r1 := treecs.Borrow[Position](store, e)
	r2 := treecs.Borrow[Position](store, e)
	require.NotNil(t, r1)
	assert.Equal(t, 2, r2.Value().Y)

	assert.PanicsWithValue(t, treecs.ErrBorrowConflict, func() {
		treecs.BorrowMut[Position](store, e)
	})

	r1.Release()
	r2.Release()
	r2.Release()

	w := treecs.BorrowMut[Position](store, e)
	w.Value().X = 9
	assert.PanicsWithValue(t, treecs.ErrBorrowConflict, func() {
		treecs.Borrow[Position](store, e)
	})
	assert.PanicsWithValue(t, treecs.ErrBorrowConflict, func() {
		treecs.BorrowMut[Position](store, e)
	})
	w.Release()

	r := treecs.Borrow[Position](store, e)
	assert.Equal(t, 9, r.Value().X)
	r.Release()
}

func TestStoreConcurrentDisjointTypes(t *testing.T) {
	store := treecs.NewComponentStore()
	const n = 500

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			treecs.Register(store, treecs.NewEntityKey(1, uint32(i)), Position{X: i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			treecs.Register(store, treecs.NewEntityKey(1, uint32(i)), Name{Value: fmt.Sprint(i)})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			treecs.UpdateComponent(store, treecs.NewEntityKey(1, uint32(i)), func(s *Score) { *s++ })
		}
	}()
	wg.Wait()

	assert.Equal(t, n, store.Count(reflect.TypeFor[Position]()))
	assert.Equal(t, n, store.Count(reflect.TypeFor[Name]()))
	assert.Equal(t, "499", treecs.GetComponent[Name](store, treecs.NewEntityKey(1, 499)).Value)
}

func TestBorrowSurvivesRemovalAndSlotReuse(t *testing.T) {
	store := treecs.NewComponentStore()
	a := treecs.NewEntityKey(1, 1)
	b := treecs.NewEntityKey(1, 2)

	treecs.Register(store, a, Position{1, 1})
	r := treecs.Borrow[Position](store, a)

	removed, ok := treecs.RemoveComponent[Position](store, a)
	require.True(t, ok)
	assert.Equal(t, Position{1, 1}, removed)
	assert.Nil(t, treecs.Borrow[Position](store, a))

	treecs.Register(store, b, Position{2, 2})
	assert.Equal(t, Position{1, 1}, *r.Value(), "a live ref keeps reading the removed value")
	r.Release()

	rb := treecs.Borrow[Position](store, b)
	require.NotNil(t, rb)
	assert.Equal(t, Position{2, 2}, *rb.Value())
	rb.Release()
	treecs.BorrowMut[Position](store, b).Release()
}

func TestStaleMutableBorrowNeverReachesReusedSlot(t *testing.T) {
	store := treecs.NewComponentStore()
	a := treecs.NewEntityKey(1, 1)
	b := treecs.NewEntityKey(1, 2)
	c := treecs.NewEntityKey(1, 3)

	treecs.Register(store, a, Position{})
	w := treecs.BorrowMut[Position](store, a)
	stale := w.Value()
	store.RemoveEntity(a)

	treecs.Register(store, b, Position{})
	stale.X = 99
	assert.Equal(t, Position{}, *treecs.GetComponent[Position](store, b))

	w.Release()
	treecs.Register(store, c, Position{X: 3})
	assert.Same(t, stale, treecs.GetComponent[Position](store, c), "slot is reused once the last borrow ends")
	assert.Equal(t, Position{X: 3}, *stale)
	assert.Equal(t, []treecs.EntityKey{c, b}, store.EntitiesWith(reflect.TypeFor[Position]()))
}

func TestOverwriteWhileBorrowedPanics(t *testing.T) {
	store := treecs.NewComponentStore()
	e := treecs.NewEntityKey(1, 1)
	treecs.Register(store, e, Score(1))

	r := treecs.Borrow[Score](store, e)
	assert.PanicsWithValue(t, treecs.ErrBorrowConflict, func() {
		treecs.Register(store, e, Score(2))
	})
	assert.PanicsWithValue(t, treecs.ErrBorrowConflict, func() {
		treecs.UpdateComponent(store, e, func(s *Score) { *s = 3 })
	})
	assert.Equal(t, Score(1), *r.Value())
	r.Release()

	treecs.Register(store, e, Score(2))
	assert.Equal(t, Score(2), *treecs.GetComponent[Score](store, e))
}

func TestRemoveAndClearWithLiveBorrows(t *testing.T) {
	tree := treecs.New()
	child, _ := tree.Add(tree.Root())
	treecs.Register(tree, child, Name{"child"})
	treecs.Register(tree, tree.Root(), Name{"root"})

	r := treecs.Borrow[Name](tree, child)
	require.True(t, tree.Remove(child))
	assert.Equal(t, "child", r.Value().Value)
	r.Release()

	rootRef := treecs.BorrowMut[Name](tree, tree.Root())
	tree.Store().Clear()
	assert.Equal(t, "root", rootRef.Value().Value)
	rootRef.Release()

	treecs.Register(tree, tree.Root(), Name{"again"})
	assert.Equal(t, []treecs.EntityKey{tree.Root()}, tree.Store().EntitiesWith(reflect.TypeFor[Name]()))
	treecs.Borrow[Name](tree, tree.Root()).Release()
}

func TestEntitiesWithDuringConcurrentRegister(t *testing.T) {
	store := treecs.NewComponentStore()
	const n = 2000

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			treecs.Register(store, treecs.NewEntityKey(1, uint32(i)), Position{X: i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			keys := store.EntitiesWith(reflect.TypeFor[Position]())
			for _, k := range keys {
				assert.False(t, k.IsZero())
			}
		}
	}()
	wg.Wait()

	assert.Len(t, store.EntitiesWith(reflect.TypeFor[Position]()), n)
}
