package queue

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
)

const testItemNum = 10

type testItem struct {
	key   string
	value int
}

type testConstraint struct {
}

func (t *testConstraint) FormStoreKey(item *testItem) string {
	return item.key
}
func (t *testConstraint) Compare(left, right *testItem) int {
	return left.value - right.value
}

func Test_BasicBlockQueueFunction(t *testing.T) {
	cfg := &config{lock: &sync.RWMutex{}}
	queue := newBlockQueue[*testItem](&testConstraint{}, cfg)
	testItems := make([]*testItem, testItemNum)
	for i := range testItems {
		item := &testItem{
			key:   fmt.Sprintf("Item_%d", i),
			value: i,
		}
		testItems[i] = item
	}

	convey.Convey("test basic block queue functions", t, func() {
		convey.Convey("test Add", func() {
			for i, item := range testItems {
				index := queue.Add(item)
				convey.So(index, convey.ShouldEqual, i)
			}
			convey.So(queue.Len() == testItemNum, convey.ShouldBeTrue)
		})

		convey.Convey("test get, peek, delete and update", func() {
			peek, err := queue.Peek()
			convey.So(err == nil, convey.ShouldBeTrue)
			convey.So(peek.key == "Item_0", convey.ShouldBeTrue)

			item := &testItem{
				key:   "Item_100",
				value: 100,
			}
			index := queue.Add(item)
			convey.So(index, convey.ShouldEqual, testItemNum)
			ret, ok := queue.Get(item)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(ret.key == item.key, convey.ShouldBeTrue)

			err = queue.Delete(item)
			convey.So(err == nil, convey.ShouldBeTrue)
			convey.So(queue.Len() == testItemNum, convey.ShouldBeTrue)
			err = queue.Delete(item)
			convey.So(err != nil, convey.ShouldBeTrue)

			// Updating the head to the largest value sends it to the tail.
			item = &testItem{key: "Item_0", value: 50}
			err = queue.Update(item)
			convey.So(err == nil, convey.ShouldBeTrue)
			ret, _ = queue.Get(item)
			convey.So(ret.value == 50, convey.ShouldBeTrue)
			peek, err = queue.Peek()
			convey.So(err == nil, convey.ShouldBeTrue)
			convey.So(peek.key == "Item_1", convey.ShouldBeTrue)

			// And back again.
			err = queue.Update(&testItem{key: "Item_0", value: 0})
			convey.So(err == nil, convey.ShouldBeTrue)
			peek, err = queue.Peek()
			convey.So(err == nil, convey.ShouldBeTrue)
			convey.So(peek.key == "Item_0", convey.ShouldBeTrue)
		})

		convey.Convey("test Pop", func() {
			for _, value := range testItems {
				popItem, err := queue.Pop()
				convey.So(err == nil, convey.ShouldBeTrue)
				convey.So(value.key, convey.ShouldEqual, popItem.key)
			}

			convey.So(queue.Len() == 0, convey.ShouldBeTrue)
		})

		convey.Convey("test Pop wait", func() {
			go func() {
				newItem := &testItem{
					key: "Item_11",
				}

				time.Sleep(100 * time.Millisecond)
				queue.Add(newItem)
			}()

			popItem, err := queue.Pop()
			convey.So(err == nil, convey.ShouldBeTrue)
			convey.So(popItem.key, convey.ShouldEqual, "Item_11")
		})

		convey.Convey("test shutdown", func() {
			newItem := &testItem{
				key: "Item_11",
			}

			queue.Add(newItem)
			go func() {
				time.Sleep(100 * time.Millisecond)
				queue.Shutdown()
			}()
			_, err := queue.Pop()
			convey.So(err == nil, convey.ShouldBeTrue)

			_, err = queue.Pop()
			convey.So(err != nil, convey.ShouldBeTrue)
			convey.So(queue.IsShutdown(), convey.ShouldBeTrue)
		})
	})
}

func Test_BlockQueueOrdering(t *testing.T) {
	queue := NewBlockQueue[*testItem](&testConstraint{}, WithLocker(&sync.Mutex{}))

	convey.Convey("values come out ordered regardless of add order", t, func() {
		for _, value := range []int{5, 3, 8, 1, 9} {
			queue.Add(&testItem{key: fmt.Sprintf("Item_%d", value), value: value})
		}

		prev := -1
		for queue.Len() > 0 {
			item, err := queue.Pop()
			convey.So(err == nil, convey.ShouldBeTrue)
			convey.So(item.value >= prev, convey.ShouldBeTrue)
			prev = item.value
		}
	})
}

func Test_BlockQueueDuplicateValues(t *testing.T) {
	cfg := &config{lock: &sync.RWMutex{}}
	queue := newBlockQueue[*testItem](&testConstraint{}, cfg)

	convey.Convey("the keyed index survives duplicate adds of one value", t, func() {
		item := &testItem{key: "Item_0", value: 0}
		queue.Add(item)
		queue.Add(item)
		convey.So(queue.Len() == 2, convey.ShouldBeTrue)

		// Deleting the value drops every copy and the key with it.
		err := queue.Delete(item)
		convey.So(err == nil, convey.ShouldBeTrue)
		convey.So(queue.Len() == 0, convey.ShouldBeTrue)
		_, ok := queue.Get(item)
		convey.So(ok, convey.ShouldBeFalse)
	})
}
