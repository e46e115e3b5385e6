package widget_test

import (
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/service/widget"
)

var (
	_ interfaces.SelectionWidget = widget.New("")
	_ interfaces.Container       = widget.New(0.0)
)

func TestValue(t *testing.T) {
	t.Run("notifies subscribers in order on change", func(t *testing.T) {
		v := widget.New("Albania")
		var got []string
		v.Subscribe(func(s string) { got = append(got, "a:"+s) })
		v.Subscribe(func(s string) { got = append(got, "b:"+s) })

		v.Set("Japan")
		gt.Equal(t, "Japan", v.Current())
		gt.Equal(t, []string{"a:Japan", "b:Japan"}, got)
	})

	t.Run("does not notify when value is unchanged", func(t *testing.T) {
		v := widget.New("1987")
		calls := 0
		v.Subscribe(func(string) { calls++ })

		v.Set("1987")
		gt.Equal(t, 0, calls)
		v.Set("1988")
		gt.Equal(t, 1, calls)
	})

	t.Run("cancel removes the subscription", func(t *testing.T) {
		v := widget.New(0.0)
		calls := 0
		cancel := v.Subscribe(func(float64) { calls++ })
		gt.Equal(t, 1, v.Subscribers())

		cancel()
		cancel()
		gt.Equal(t, 0, v.Subscribers())

		v.Set(640)
		gt.Equal(t, 0, calls)
	})

	t.Run("subscriber may read the widget", func(t *testing.T) {
		v := widget.New("line")
		var seen string
		v.Subscribe(func(string) { seen = v.Current() })
		v.Set("bar")
		gt.Equal(t, "bar", seen)
	})

	t.Run("concurrent sets are safe", func(t *testing.T) {
		v := widget.New(0)
		var mu sync.Mutex
		count := 0
		v.Subscribe(func(int) {
			mu.Lock()
			count++
			mu.Unlock()
		})

		var wg sync.WaitGroup
		for i := 1; i <= 50; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				v.Set(n)
			}(i)
		}
		wg.Wait()

		mu.Lock()
		defer mu.Unlock()
		gt.True(t, count >= 1)
		gt.True(t, count <= 50)
	})
}
