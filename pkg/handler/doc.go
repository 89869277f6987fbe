// Package handler ships structured log events through a lumberjack
// dispatcher.
//
// A [Writer] implements zerolog.LevelWriter. Each JSON event it receives
// becomes one document whose collection suffix is the event time formatted
// with a layout (daily by default), so logs land in time-partitioned
// collections such as "logs-2014.06.24".
//
//	w := handler.New(dispatcher, handler.Config{TypeTag: "app"})
//	logger := zerolog.New(zerolog.MultiLevelWriter(os.Stderr, w))
//
// Do not attach the Writer to the logger used by the dispatcher itself.
package handler
