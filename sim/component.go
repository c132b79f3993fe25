package sim

import (
	"fmt"
	"sync"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Component is an element that is being simulated.
type Component interface {
	Named
	Handler
	Hookable

	Ports() []Port
	GetPortByName(name string) Port
	NotifyRecv(port Port)
	NotifyPortFree(port Port)
}

// ComponentBase provides functions that other components can use.
type ComponentBase struct {
	HookableBase
	sync.Mutex

	name      string
	ports     map[string]Port
	portNames []string
}

// NewComponentBase creates a new ComponentBase.
func NewComponentBase(name string) *ComponentBase {
	c := new(ComponentBase)
	c.name = name
	c.ports = make(map[string]Port)
	return c
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}

// AddPort registers a port under the given name.
func (c *ComponentBase) AddPort(name string, port Port) {
	if _, found := c.ports[name]; found {
		panic(fmt.Sprintf("port %s already exists on %s", name, c.name))
	}

	c.ports[name] = port
	c.portNames = append(c.portNames, name)
}

// Ports returns the ports of the component, in registration order.
func (c *ComponentBase) Ports() []Port {
	ports := make([]Port, 0, len(c.portNames))
	for _, n := range c.portNames {
		ports = append(ports, c.ports[n])
	}
	return ports
}

// GetPortByName returns the port by the name of the port.
func (c *ComponentBase) GetPortByName(name string) Port {
	port, found := c.ports[name]
	if !found {
		panic(fmt.Sprintf(
			"port %s is not available on component %s", name, c.name))
	}

	return port
}
