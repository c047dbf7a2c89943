package cli

import (
	"context"
	"fmt"
	"strconv"
)

// List prints the current service catalog.
func (a *App) List(ctx context.Context) error {
	list, err := a.client.ListServices(ctx)
	if err != nil {
		a.println(err.Error())
		return err
	}
	if len(list) == 0 {
		a.println("No services registered.")
		return nil
	}
	for _, s := range list {
		fmt.Fprintf(a.out, "%s  %s:%d\n", s.ID, s.Name, s.Port)
	}
	return nil
}

// Add prompts for a name and port and registers a new service.
func (a *App) Add(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter service name", a.out)
	if err != nil {
		return err
	}
	portText, err := GetSimpleText(a.reader, "Enter port", a.out)
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		a.println("Port must be a number.")
		return err
	}

	s, err := a.client.AddService(ctx, name, port)
	if err != nil {
		a.println(err.Error())
		return err
	}
	a.println("Added", s.ID)
	return nil
}

// Remove deletes a service by id. The id comes from the command argument if
// present, otherwise it is prompted for.
func (a *App) Remove(ctx context.Context, id string) error {
	if id == "" {
		var err error
		id, err = GetSimpleText(a.reader, "Enter service id", a.out)
		if err != nil {
			return err
		}
	}
	if err := a.client.RemoveService(ctx, id); err != nil {
		a.println(err.Error())
		return err
	}
	a.println("Removed.")
	return nil
}
