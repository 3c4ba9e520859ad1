// Печатает bcrypt-хеш пароля для ручной правки users.password_hash.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gearguard/pkg/utils"
)

func main() {
	password := flag.String("password", "", "пароль, для которого нужен хеш")
	flag.Parse()

	if *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	hashed, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatalf("Ошибка при генерации хеша: %v", err)
	}
	fmt.Println(hashed)
}
