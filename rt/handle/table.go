package handle

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Table - это потокобезопасная служба разрешения дескрипторов.
// Она сопоставляет идентификатор объекта с записью, содержащей привязку к
// бэкенду и нативный объект. Время жизни нативных объектов управляется
// бэкендами, таблица хранит только ссылки.
type Table struct {
	objects map[uuid.UUID]*Object
	mu      sync.RWMutex
}

// NewTable создает пустую таблицу дескрипторов.
func NewTable() *Table {
	return &Table{
		objects: make(map[uuid.UUID]*Object),
	}
}

// NewPlatform регистрирует нативную платформу бэкенда и возвращает ее дескриптор.
func (t *Table) NewPlatform(backend Backend, native any) (*Platform, error) {
	obj, err := t.create(KindPlatform, backend, native)
	if err != nil {
		return nil, err
	}
	return &Platform{obj: obj}, nil
}

// NewDevice регистрирует нативное устройство бэкенда и возвращает его дескриптор.
func (t *Table) NewDevice(backend Backend, native any) (*Device, error) {
	obj, err := t.create(KindDevice, backend, native)
	if err != nil {
		return nil, err
	}
	return &Device{obj: obj}, nil
}

// NewKernel регистрирует нативное ядро бэкенда и возвращает его дескриптор.
func (t *Table) NewKernel(backend Backend, native any) (*Kernel, error) {
	obj, err := t.create(KindKernel, backend, native)
	if err != nil {
		return nil, err
	}
	return &Kernel{obj: obj}, nil
}

func (t *Table) create(kind Kind, backend Backend, native any) (*Object, error) {
	if backend == "" {
		return nil, fmt.Errorf("не указан бэкенд для объекта типа '%s'", kind)
	}
	if native == nil {
		return nil, fmt.Errorf("не указан нативный объект типа '%s' для бэкенда '%s'", kind, backend)
	}

	obj := &Object{
		ID:      uuid.New(),
		Kind:    kind,
		Backend: backend,
		Native:  native,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.objects[obj.ID]; exists {
		return nil, fmt.Errorf("объект '%s' уже зарегистрирован", obj.ID)
	}
	t.objects[obj.ID] = obj

	return obj, nil
}

// Lookup возвращает запись объекта по идентификатору.
func (t *Table) Lookup(id uuid.UUID) (*Object, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	obj, ok := t.objects[id]
	return obj, ok
}

// Device восстанавливает дескриптор устройства по идентификатору.
func (t *Table) Device(id uuid.UUID) (*Device, error) {
	obj, ok := t.Lookup(id)
	if !ok || obj.Kind != KindDevice {
		return nil, fmt.Errorf("устройство '%s' не найдено", id)
	}
	return &Device{obj: obj}, nil
}

// Release удаляет объект из таблицы. Ранее выданные дескрипторы
// продолжают ссылаться на запись, но Lookup ее больше не находит.
func (t *Table) Release(id uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.objects[id]; !ok {
		return fmt.Errorf("объект '%s' не найден", id)
	}
	delete(t.objects, id)
	return nil
}

// Len возвращает количество зарегистрированных объектов.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.objects)
}
