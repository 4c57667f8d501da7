package services

// ConnectivityMonitor определяет интерфейс источника сигнала связности.
type ConnectivityMonitor interface {
	// IsConnected возвращает последнее известное состояние связности.
	IsConnected() bool

	// Subscribe регистрирует обработчик смены состояния и возвращает
	// функцию отписки. Обработчик вызывается только при изменении состояния.
	Subscribe(callback func(isConnected bool)) (unsubscribe func())
}
