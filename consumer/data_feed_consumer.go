package consumer

import (
	"pivotdash/model"
	"pivotdash/panel"
)

type DataFeedConsumer struct {
	panelController *panel.Controller
}

func NewDataFeedConsumer(controller *panel.Controller) *DataFeedConsumer {
	return &DataFeedConsumer{
		panelController: controller,
	}
}

func (c *DataFeedConsumer) OnCandle(candle model.Candle) {
	c.panelController.OnCandle(candle)
}
