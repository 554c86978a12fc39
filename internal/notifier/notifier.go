// Package notifier reports executed commands.
package notifier

type Notifier interface {
	Notify(title string, text string)
}

type Notifiers []Notifier

func (n Notifiers) Notify(title string, text string) {
	for _, l := range n {
		l.Notify(title, text)
	}
}
