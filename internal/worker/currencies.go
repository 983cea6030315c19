package worker

import "slices"

// AddCurrency добавляет валюту в список сканирования (если ещё нет).
func (w *FlipScanner) AddCurrency(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !slices.Contains(w.currencies, name) {
		w.currencies = append(w.currencies, name)
	}
}

func (w *FlipScanner) RemoveCurrency(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.currencies = slices.DeleteFunc(w.currencies, func(c string) bool { return c == name })
}

// Currencies возвращает копию списка; пустой список означает все валюты.
func (w *FlipScanner) Currencies() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.currencies) == 0 {
		return nil
	}

	return slices.Clone(w.currencies)
}

func (w *FlipScanner) SetCurrencies(names []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(names) == 0 {
		w.currencies = nil
		return
	}

	w.currencies = slices.Clone(names)
}

func (w *FlipScanner) ClearCurrencies() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.currencies = nil
}

func (w *FlipScanner) HasCurrency(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Contains(w.currencies, name)
}

func (w *FlipScanner) League() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.league
}

// SetLeague переключает лигу; действует со следующего цикла.
func (w *FlipScanner) SetLeague(league string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.league = league
}
