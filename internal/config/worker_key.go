package config

type WorkerKeyStruct struct {
	PersistProctorQueue string
	PersistWindowQueue  string
}

var WorkerKey = &WorkerKeyStruct{
	PersistProctorQueue: "persist_proctor_queue",
	PersistWindowQueue:  "persist_window_queue",
}
