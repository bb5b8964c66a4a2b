package cli

import "github.com/manifoldco/promptui"

func promptSelect(label string, items []string) (int, error) {
	p := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}
	idx, _, err := p.Run()
	return idx, err
}
