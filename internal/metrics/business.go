package metrics

// Login outcomes
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.safeExecute("RecordLogin", func() {
		m.LoginsTotal.WithLabelValues(outcome).Inc()
	})
}

// AddNotifications counts n notifications of the given type.
func (m *Metrics) AddNotifications(notificationType string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.safeExecute("AddNotifications", func() {
		m.NotificationsCreated.WithLabelValues(notificationType).Add(float64(n))
	})
}

func (m *Metrics) AddMentionsResolved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.safeExecute("AddMentionsResolved", func() {
		m.MentionsResolved.Add(float64(n))
	})
}

func (m *Metrics) IncrementFilesUploaded() {
	if m == nil {
		return
	}
	m.safeExecute("IncrementFilesUploaded", func() {
		m.FilesUploaded.Inc()
	})
}

func (m *Metrics) AddNotificationsPurged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.safeExecute("AddNotificationsPurged", func() {
		m.NotificationsPurged.Add(float64(n))
	})
}
