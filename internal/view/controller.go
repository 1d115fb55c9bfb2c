package view

// NewItemText is the text of an item created by Controller.NewItem.
const NewItemText = "new item"

// ItemAdder is the action emitter operation a Controller needs.
type ItemAdder interface {
	AddItem(text string) error
}

// Controller turns user gestures into actions.
type Controller struct {
	emitter ItemAdder
}

// NewController creates a Controller that emits through e.
func NewController(e ItemAdder) *Controller {
	return &Controller{emitter: e}
}

// NewItem adds an item with the fixed NewItemText.
func (c *Controller) NewItem() error {
	return c.emitter.AddItem(NewItemText)
}

// Add adds an item with the given text.
func (c *Controller) Add(text string) error {
	return c.emitter.AddItem(text)
}
